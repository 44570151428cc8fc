package container

// contextualRule replaces one entry of a consumer's dependency list.
type contextualRule struct {
	target  string
	value   any
	literal bool
}

// ContextualBuilder implements the fluent contextual binding API.
//
//	// when the welcome mailer needs a transport, give it the sandbox one
//	c.When("mail.welcome").Needs("mail.transport").Give("mail.transport.sandbox")
type ContextualBuilder struct {
	container *Container
	consumer  string
	needs     string
}

// When starts a contextual binding chain for consumer.
func (c *Container) When(consumer string) *ContextualBuilder {
	return &ContextualBuilder{container: c, consumer: consumer}
}

// Needs names the dependency of the consumer that should be swapped.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give resolves abstract in place of the dependency named by Needs.
func (b *ContextualBuilder) Give(abstract string) {
	b.set(contextualRule{target: abstract})
}

// GiveValue passes value as-is in place of the dependency named by Needs.
//
//	c.When("users.repository").Needs("users.seed_file").GiveValue("testdata/users.yaml")
func (b *ContextualBuilder) GiveValue(value any) {
	b.set(contextualRule{value: value, literal: true})
}

func (b *ContextualBuilder) set(rule contextualRule) {
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	consumer := c.canonical(b.consumer)
	if _, ok := c.contextual[consumer]; !ok {
		c.contextual[consumer] = make(map[string]contextualRule)
	}
	c.contextual[consumer][c.canonical(b.needs)] = rule
}
