package bnf

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	synErrInvalidToken     = newSyntaxError("invalid token")
	synErrNoProductionName = newSyntaxError("a rule must start with its LHS name")
	synErrNoAssign         = newSyntaxError("an LHS name must be followed by ':='")
	synErrIncompleteAssign = newSyntaxError("':' must be followed by '='")
	synErrUnclosedLiteral  = newSyntaxError("unclosed terminal literal")
	synErrEmptyLiteral     = newSyntaxError("a terminal literal must not be empty")
	synErrEmptyNotAlone    = newSyntaxError("ε must be the only element of an alternative")
	synErrUnexpectedToken  = newSyntaxError("unexpected token")
)
