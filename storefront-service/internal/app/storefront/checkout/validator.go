package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/go-playground/validator/v10"
)

var (
	looseEmailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)
	digitsRegex     = regexp.MustCompile(`^[0-9]+$`)
	cardExpiryRegex = regexp.MustCompile(`^[0-9]{2}/[0-9]{2}$`)
)

// fieldMessages сообщение для каждого поля формы; любое нарушение правила поля
// даёт одно и то же сообщение
var fieldMessages = map[string]string{
	"name":           "Name is required.",
	"email":          "Valid email is required.",
	"address":        "Address is required.",
	"city":           "City is required.",
	"state":          "State is required.",
	"postal_code":    "Valid postal code is required.",
	"phone":          "Valid phone number is required.",
	"payment_method": "Valid payment method is required.",
	"card_number":    "Valid card number is required.",
	"card_expiry":    "Valid expiry date is required (MM/YY).",
	"card_cvv":       "Valid CVV is required.",
	"upi_id":         "UPI ID is required.",
}

// Validator проверяет форму оформления заказа
// Не останавливается на первой ошибке: проверяются все применимые поля
type Validator struct {
	validate *validator.Validate
}

// NewValidator создает валидатор с зарегистрированными правилами формы
func NewValidator() *Validator {
	v := validator.New()

	// Ключи ошибок - json имена полей
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "loose_email", looseEmailRegex)
	mustRegister(v, "digits", digitsRegex)
	mustRegister(v, "card_expiry", cardExpiryRegex)

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// Validate возвращает ошибки по полям; пустая карта означает валидную форму.
// Реквизиты невыбранного способа оплаты игнорируются.
func (v *Validator) Validate(form entity.ShippingForm) entity.ValidationErrors {
	result := entity.ValidationErrors{}
	normalized := form.Normalized()
	if form.PaymentMethod == "" {
		// Пустой способ оплаты не подменяем значением по умолчанию при проверке
		normalized.PaymentMethod = ""
	}

	err := v.validate.Struct(normalized)
	if err == nil {
		return result
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		result["form"] = "Validation failed"
		return result
	}

	for _, fieldError := range validationErrors {
		field := fieldError.Field()
		if msg, ok := fieldMessages[field]; ok {
			result[field] = msg
		} else {
			result[field] = field + " is " + fieldError.Tag()
		}
	}

	return result
}
