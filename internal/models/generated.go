package models

// InterfaceMember is one abstract operation of a generated interface
type InterfaceMember struct {
	Name   string      // member name
	Params []Parameter // ordered parameters
	Result TypeRef     // explicit result, Void when nothing is returned
}

// GeneratedInterfaceModel describes the I<Name> interface for a declaration
type GeneratedInterfaceModel struct {
	PackageName string            // package the interface is generated into
	Name        string            // I<Name>
	Source      string            // simple name of the source declaration
	Members     []InterfaceMember // abstract members in filtered order
}

// ForwardCall is the call a delegate member makes on its wrapped value
type ForwardCall struct {
	Target string   // field holding the wrapped value
	Method string   // member invoked on the wrapped value
	Args   []string // parameter names passed in order
	Spread bool     // whether the last argument is passed with ...
}

// DelegateMember is one forwarding operation of a generated delegate
type DelegateMember struct {
	Name    string      // member name
	Params  []Parameter // ordered parameters
	Result  TypeRef     // result type
	Call    ForwardCall // forwarded call
	Returns bool        // whether the call result is returned
}

// DelegateField is the private field holding the wrapped value
type DelegateField struct {
	Name string  // field name
	Type TypeRef // field type
}

// DelegateConstructor is the single constructor of a delegate
type DelegateConstructor struct {
	Name  string // constructor function name
	Param string // name of the single parameter
}

// GeneratedDelegateModel describes the <Name>Impl delegate for a declaration
type GeneratedDelegateModel struct {
	PackageName string              // package the delegate is generated into
	Name        string              // <Name>Impl
	Implements  string              // I<Name>
	Source      string              // simple name of the source declaration
	Receiver    string              // receiver name used by every member
	Field       DelegateField       // wrapped value
	Constructor DelegateConstructor // constructor
	Members     []DelegateMember    // forwarding members in filtered order
}

// GeneratedUnit is one rendered compilation unit
type GeneratedUnit struct {
	Declaration string // key of the source declaration
	Dir         string // output directory
	FileName    string // output file name
	Origin      string // originating source file
	Content     []byte // formatted Go source
}
