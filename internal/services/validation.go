package service

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// ValidationError lists the failing fields of a form. It matches
// pkgerrors.ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%v: %s", pkgerrors.ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return pkgerrors.ErrInvalidInput }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateForm runs the struct tags of form and translates failures with
// messages, keyed "Field.tag". Unknown keys fall back to the validator text.
func validateForm(form any, messages map[string]string) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(form)
	if err == nil {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		verr.add("form", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		verr.add(fe.Field(), msg)
	}
	return verr
}

var minAmount = decimal.RequireFromString("0.01")

func checkAmount(verr *ValidationError, amount decimal.Decimal) {
	if !amount.IsPositive() {
		verr.add("Amount", "Amount must be positive.")
		return
	}
	if amount.LessThan(minAmount) {
		verr.add("Amount", "Amount must be at least $0.01.")
	}
}
