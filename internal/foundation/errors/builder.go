package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category with the category's default severity.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: classOf(category).severity,
		message:  message,
	}}
}

// WrapError is NewError with cause attached.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.with(key, value)
	return b
}

// Warning lowers the severity so the error is logged at warn level.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Info lowers the severity so the error is logged at info level.
func (b *ErrorBuilder) Info() *ErrorBuilder {
	b.err.severity = SeverityInfo
	return b
}

func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func ForbiddenError(message string) *ErrorBuilder  { return NewError(CategoryForbidden, message) }
func NotFoundError(message string) *ErrorBuilder   { return NewError(CategoryNotFound, message) }
func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }
func RenderError(message string) *ErrorBuilder     { return NewError(CategoryRender, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }
