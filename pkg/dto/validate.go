package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
		validate.RegisterStructValidation(amountScale, DepositCommand{}, WithdrawCommand{}, TransferCommand{})
		validate.RegisterStructValidation(initialDepositScale, AccountCreate{})
	})
	return validate
}

func amountScale(sl validator.StructLevel) {
	if amount, ok := sl.Current().FieldByName("Amount").Interface().(decimal.Decimal); ok {
		if !money.HasValidScale(amount) {
			sl.ReportError(amount, "Amount", "Amount", "scale", "2")
		}
	}
}

func initialDepositScale(sl validator.StructLevel) {
	cmd := sl.Current().Interface().(AccountCreate)
	if !money.HasValidScale(cmd.InitialDeposit) {
		sl.ReportError(cmd.InitialDeposit, "InitialDeposit", "InitialDeposit", "scale", "2")
	}
}

// Validate applies the caller-side shape rules to a command.
// The engine does not repeat these checks; it only enforces business preconditions.
func Validate(cmd any) error {
	err := validatorInstance().Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "gt":
		return fe.Field() + " must be greater than zero"
	case "gte":
		return fe.Field() + " cannot be negative"
	case "lte":
		return fmt.Sprintf("%s cannot exceed %s per transaction", fe.Field(), fe.Param())
	case "nefield":
		return "cannot transfer to the same account"
	case "scale":
		return fe.Field() + " cannot have more than 2 decimal places"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
