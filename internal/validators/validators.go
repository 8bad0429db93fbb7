package validators

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Indian mobile numbers: ten digits starting with 6-9.
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// placeFields are the string fields every place submission must carry.
var placeFields = []string{"name", "district", "category", "season", "description"}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateContact classifies an OTP contact as an email address or a phone number.
func ValidateContact(contact string) (types.ContactKind, error) {
	if ValidateEmail(contact) {
		return types.ContactEmail, nil
	}
	if ValidatePhone(contact) {
		return types.ContactPhone, nil
	}
	return "", fmt.Errorf("%w: contact must be an email or an Indian phone number", types.ErrInvalidFormat)
}

// ValidatePlaceData checks a raw place submission and returns it unchanged.
func ValidatePlaceData(record map[string]any) (map[string]any, error) {
	for _, field := range placeFields {
		v, ok := record[field]
		if !ok {
			return nil, fmt.Errorf("%w: %w: missing required field: %s", types.ErrValidation, types.ErrMissingField, field)
		}
		if _, ok := v.(string); !ok {
			return nil, fmt.Errorf("%w: %w: field %s must be a string", types.ErrValidation, types.ErrMissingField, field)
		}
	}

	_, hasLat := record["lat"]
	_, hasLon := record["lon"]
	if !hasLat && !hasLon {
		return record, nil
	}
	lat, latOK := types.FloatField(record, "lat")
	lon, lonOK := types.FloatField(record, "lon")
	if !latOK || !lonOK {
		return nil, fmt.Errorf("%w: %w: coordinates must be valid numbers", types.ErrValidation, types.ErrInvalidCoordinate)
	}
	if err := checkCoordinates(lat, lon); err != nil {
		return nil, err
	}
	return record, nil
}

// ValidatePlace is the typed counterpart of ValidatePlaceData.
func ValidatePlace(p types.Place) error {
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return fmt.Errorf("%w: %w: lat and lon must be given together", types.ErrValidation, types.ErrInvalidCoordinate)
	}
	if err := validate.Struct(p); err != nil {
		return translate(err)
	}
	return nil
}

func ValidateFeedback(f types.Feedback) error {
	if err := validate.Struct(f); err != nil {
		return translate(err)
	}
	return nil
}

func ValidateItinerary(it types.Itinerary) error {
	if len(it.Interests) == 0 {
		return fmt.Errorf("%w: %w: missing required field: interests", types.ErrValidation, types.ErrMissingField)
	}
	if err := validate.Struct(it); err != nil {
		return translate(err)
	}
	return nil
}

func checkCoordinates(lat, lon float64) error {
	if !inRange(lat, 90) || !inRange(lon, 180) {
		return fmt.Errorf("%w: %w: lat=%g lon=%g out of range", types.ErrValidation, types.ErrInvalidCoordinate, lat, lon)
	}
	return nil
}

// inRange is false for NaN and infinities.
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}

// translate maps the first validator failure onto the service error kinds.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s", types.ErrValidation, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %w: missing required field: %s", types.ErrValidation, types.ErrMissingField, jsonName(fe))
	case "latitude", "longitude":
		return fmt.Errorf("%w: %w: %s out of range", types.ErrValidation, types.ErrInvalidCoordinate, jsonName(fe))
	default:
		return fmt.Errorf("%w: field %s failed %q", types.ErrValidation, jsonName(fe), fe.Tag())
	}
}

var jsonNames = map[string]string{
	"Latitude":  "lat",
	"Longitude": "lon",
}

func jsonName(fe validator.FieldError) string {
	if n, ok := jsonNames[fe.Field()]; ok {
		return n
	}
	return toSnake(fe.Field())
}

func toSnake(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
