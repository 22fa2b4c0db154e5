package response

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub-ng/api/utils/validation"
)

type ratingInput struct {
	Action string `validate:"required"`
	Rating int    `validate:"min=1,max=5"`
}

func TestValidationErrorDetails(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		err := validation.NewValidator().ValidateStruct(ratingInput{Rating: 9})
		return ValidationError(c, err)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatal("expected a VALIDATION_ERROR payload")
	}

	// Field messages come back sorted and joined, not the raw library error
	if !strings.Contains(body.Error.Details, "Action is required") {
		t.Errorf("expected a message for the missing action, got %q", body.Error.Details)
	}
	if !strings.Contains(body.Error.Details, "Rating must be at most 5") {
		t.Errorf("expected a message for the oversized rating, got %q", body.Error.Details)
	}
	if strings.Index(body.Error.Details, "Action") > strings.Index(body.Error.Details, "Rating") {
		t.Error("expected field messages in sorted field order")
	}
}
