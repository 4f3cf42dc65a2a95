package errors

import (
	"fmt"
	"strings"
)

// WrapParseError wraps a marker parsing failure
func WrapParseError(item string, loc SourceLocation, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause).
		WithLocation(loc).
		WithSuggestion("markers look like: //delegen::implementation -Exclude=Close,Reset")
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause).
		WithContext("template", templateName).
		WithContext("stage", operation)
}

// WrapGenerateError wraps a failure while producing a declaration's output
func WrapGenerateError(declaration string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", declaration), cause).
		WithContext("declaration", declaration)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// WrapLoadError wraps a failure to load packages for discovery
func WrapLoadError(patterns []string, cause error) *BaseError {
	return Wrap(LoadErrorCode, fmt.Sprintf("failed to load packages %s", strings.Join(patterns, " ")), cause).
		WithContext("patterns", patterns).
		WithSuggestion("Check that the patterns name packages inside the current module")
}

// NewValidationError reports a declaration that breaks a structural invariant
func NewValidationError(declaration string, cause error) *BaseError {
	return Wrap(ValidationErrorCode, fmt.Sprintf("invalid declaration %s", declaration), cause).
		WithContext("declaration", declaration)
}

// NewUnresolvableTypeError reports a member whose type cannot be mapped to a concrete type
func NewUnresolvableTypeError(declaration, member, typeExpr string) *BaseError {
	return Newf(UnresolvableTypeErrorCode, "cannot resolve type %q used by %s.%s", typeExpr, declaration, member).
		WithContext("declaration", declaration).
		WithContext("member", member).
		WithContext("type", typeExpr).
		WithSuggestions(
			"Type parameters are not supported; annotate a non-generic type",
			fmt.Sprintf("Exclude the member with -Exclude=%s", member),
		)
}

// NewNameCollisionError reports a generated identifier that the package already declares
func NewNameCollisionError(declaration, identifier string) *BaseError {
	return Newf(NameCollisionErrorCode, "cannot generate %s for %s: the package already declares it", identifier, declaration).
		WithContext("declaration", declaration).
		WithContext("identifier", identifier).
		WithSuggestion(fmt.Sprintf("Rename or remove the existing %s", identifier))
}

// NewOutputCollisionError reports two declarations whose generated units share one file
func NewOutputCollisionError(declaration, owner, path string) *BaseError {
	return Newf(NameCollisionErrorCode, "cannot generate %s: '%s' is already generated for %s", declaration, path, owner).
		WithContext("declaration", declaration).
		WithContext("owner", owner).
		WithContext("path", path).
		WithSuggestion("Rename one of the declarations or use file_naming: verbatim")
}

// NewStuckDeclarationError reports a declaration that stayed unresolved after the last round
func NewStuckDeclarationError(declaration string, rounds int, unresolved []string) *BaseError {
	err := Newf(StuckDeclarationErrorCode, "%s still has unresolved types after %d round(s): %s",
		declaration, rounds, strings.Join(unresolved, ", ")).
		WithContext("declaration", declaration).
		WithContext("rounds", rounds)
	return err.WithSuggestion("Make sure every referenced type is declared or generated by another marked type")
}
