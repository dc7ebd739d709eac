// Package typemap maps vendor PLC type names onto the bridge's
// canonical data types.
//
// PLC vendors name the same primitive many ways ("DINT", "Int32",
// "LREAL", "double"). The mapping is a closed table over the canonical
// DataType variants, compared case-insensitively. Aliased vendor types
// carry a base type name in their descriptor; when present the base
// type wins, so user-defined aliases resolve to their underlying
// primitive.
//
// Unknown and structured type names map to DataTypeStruct rather than
// failing. Container tags therefore receive a placeholder type without
// special-casing, and new vendor aliases degrade gracefully.
//
// Date/time vendor types map to DataTypeUint32. This is a lossy
// simplification carried over from the bridged controller families,
// which expose DATE/TOD values as 32-bit seconds/milliseconds counters.
package typemap
