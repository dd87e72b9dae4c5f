// Package observable is the runtime half of the beacon generator: the
// change-notification plumbing that generated accessor pairs call into.
//
// A type that wants generated observable properties embeds Object (or
// ValidatedObject when its fields carry validation rules, or Recipient when
// changes should be broadcast through a messenger). Generated setters fetch
// interned notification arguments via ChangedArgsFor/ChangingArgsFor, so a
// property set never allocates argument objects, and the instance for a
// given property name is reference-stable for the life of the process.
package observable
