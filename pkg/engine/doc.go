// Package engine is the host side of the plugin boundary. It builds plugins
// from configuration, keeps the registry of the models they contribute,
// resolves API keys from the key store, and runs prompts through a model.
// Frontends interact with Engine and never call a model's Execute directly.
package engine
