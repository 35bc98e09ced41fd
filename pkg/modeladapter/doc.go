// Package modeladapter defines the boundary between the host and model
// plugins.
//
// It contains:
//   - [Model], [Options], [Prompt], [Response], and [Conversation], the types
//     a plugin implements or receives
//   - [ModelAdapter], an embeddable base struct with HTTP helpers, auth, and custom headers
//   - the error taxonomy: [MissingCredentialError] and [ServiceError]
//   - [github.com/accudio/llm-cohere/pkg/modeladapter/options]: option descriptors and validators
//   - [github.com/accudio/llm-cohere/pkg/modeladapter/usage]: billed token counts
//
// This package contains no provider-specific code. Concrete models live in
// separate packages that import modeladapter.
package modeladapter
