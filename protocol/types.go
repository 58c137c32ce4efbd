package protocol

// NullableString mirrors the wire protocol's nullable STRING type. A null
// string is encoded as length -1 and is distinct from the empty string.
type NullableString struct {
	IsValid bool
	IsNull  bool
	Value   string
}

var EmptyNullableString = NullableString{}

func NewNullableString(value string) NullableString {
	return NullableString{IsValid: true, IsNull: false, Value: value}
}

func NullString() NullableString {
	return NullableString{IsValid: true, IsNull: true}
}
