package parser

import "golang.org/x/tools/go/packages"

// loadMode is what discovery needs from go/packages: syntax with doc
// comments and full type information for the marked packages.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// blankParamFormat names parameters that are unnamed or blank in the source
const blankParamFormat = "p%d"
