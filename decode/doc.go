// Package decode materializes typed Go values from parsed documents.
//
// The entry points are [Into] and [IntoRef] for in-memory values, [Typed]
// as a generic convenience, and [Root] for decoding straight from source
// text. Struct fields are matched by `yaml` tags; a `flatten` option marks
// a catch-all field that absorbs entries no other field consumed, and
// entries nothing consumed are reported through [WithUnusedKeyFunc] rather
// than failing the decode.
//
// The wrapper types [Spanned], [Verbatim], and [ShouldBe] change how a
// single field decodes: span capture, transformer opt-out with an explicit
// absent state, and error recovery respectively. [Variant] and
// [VariantUnmarshaler] decode tagged nodes as discriminated unions.
//
// Every decode operation carries its own context; no state is shared
// between operations or goroutines.
package decode
