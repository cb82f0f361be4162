package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrCardNotFound             = errors.New("card not found")
	ErrBeneficiaryNotFound      = errors.New("beneficiary not found")
	ErrBillerNotFound           = errors.New("biller not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrInvalidDate              = errors.New("invalid date")
	ErrNegativeAmount           = errors.New("amount must not be negative")
	ErrInvalidCredentials       = fmt.Errorf("invalid credentials")
	ErrInvalidInput             = fmt.Errorf("ErrInvalidInput")
	ErrInternal                 = fmt.Errorf("internal error")
)
