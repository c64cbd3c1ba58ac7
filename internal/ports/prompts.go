package ports

// PromptSource supplies the synthetic chat messages the bot sends. Content
// generation stays outside the core so it never enters the test surface.
type PromptSource interface {
	Next() string
}
