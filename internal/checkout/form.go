package checkout

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

var phoneRe = regexp.MustCompile(`^\+?[0-9 \-]{10,15}$`)

// Form is the customer's delivery and payment details.
type Form struct {
	FirstName     string `json:"firstName" validate:"required,max=80"`
	LastName      string `json:"lastName" validate:"required,max=80"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Phone         string `json:"phone" validate:"required"`
	Address       string `json:"address" validate:"required,max=300"`
	City          string `json:"city" validate:"required,max=80"`
	PostalCode    string `json:"postalCode" validate:"required"`
	DeliveryDate  string `json:"deliveryDate" validate:"required"`
	DeliveryTime  string `json:"deliveryTime" validate:"required"`
	Notes         string `json:"notes" validate:"max=1000"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func (f Form) normalized() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.DeliveryDate = strings.TrimSpace(f.DeliveryDate)
	f.DeliveryTime = strings.TrimSpace(f.DeliveryTime)
	f.Notes = strings.TrimSpace(f.Notes)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	return f
}

// Validate checks the form against today's date in loc and the configured
// delivery slots. It returns the normalized form or a VALIDATION_ERROR with
// one message per failing field.
func Validate(f Form, now time.Time, loc *time.Location, slots []string) (Form, error) {
	f = f.normalized()
	fields := map[string]string{}

	if err := formValidator.Struct(f); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				fields[fe.Field()] = fieldMessage(fe)
			}
		} else {
			return Form{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
	}

	if _, bad := fields["phone"]; !bad && !phoneRe.MatchString(f.Phone) {
		fields["phone"] = "enter a valid phone number"
	}
	if _, bad := fields["postalCode"]; !bad && !pricing.ValidPostalCode(f.PostalCode) {
		fields["postalCode"] = "enter a valid 5-digit postal code"
	}
	if _, bad := fields["deliveryDate"]; !bad {
		if msg := checkDeliveryDate(f.DeliveryDate, now, loc); msg != "" {
			fields["deliveryDate"] = msg
		}
	}
	if _, bad := fields["deliveryTime"]; !bad && len(slots) > 0 && !containsSlot(slots, f.DeliveryTime) {
		fields["deliveryTime"] = "choose one of the available delivery slots"
	}
	if _, bad := fields["paymentMethod"]; !bad {
		if _, err := enums.ParsePaymentMethod(f.PaymentMethod); err != nil {
			fields["paymentMethod"] = "choose cash on delivery or mobile wallet"
		}
	}

	if len(fields) > 0 {
		return Form{}, pkgerrors.FieldErrors("please correct the highlighted fields", fields)
	}
	return f, nil
}

func checkDeliveryDate(raw string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return "enter a date as YYYY-MM-DD"
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		return "delivery date cannot be in the past"
	}
	return ""
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if strings.TrimSpace(s) == slot {
			return true
		}
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
