package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

const kofiSchemaURL = "novelhub://schemas/kofi-webhook.json"

const kofiSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["verification_token", "kofi_transaction_id", "type", "amount", "currency"],
  "properties": {
    "verification_token": {"type": "string", "minLength": 1},
    "message_id": {"type": "string"},
    "timestamp": {"type": "string"},
    "type": {"enum": ["Donation", "Subscription", "Commission", "Shop Order"]},
    "is_public": {"type": "boolean"},
    "from_name": {"type": ["string", "null"]},
    "message": {"type": ["string", "null"], "maxLength": 2000},
    "amount": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]{1,2})?$"},
    "url": {"type": ["string", "null"]},
    "email": {"type": ["string", "null"]},
    "currency": {"type": "string", "pattern": "^[A-Z]{3}$"},
    "is_subscription_payment": {"type": "boolean"},
    "is_first_subscription_payment": {"type": "boolean"},
    "kofi_transaction_id": {"type": "string", "minLength": 1, "maxLength": 128},
    "tier_name": {"type": ["string", "null"]}
  }
}`

var compiledKofiSchema = mustCompileKofiSchema()

func mustCompileKofiSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(kofiSchemaURL, strings.NewReader(kofiSchema)); err != nil {
		panic(fmt.Sprintf("kofi schema: %v", err))
	}
	schema, err := c.Compile(kofiSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("kofi schema: %v", err))
	}
	return schema
}

// KofiPayload là JSON trong field "data" mà Ko-fi POST tới webhook
type KofiPayload struct {
	VerificationToken string  `json:"verification_token"`
	MessageID         string  `json:"message_id"`
	Timestamp         string  `json:"timestamp"`
	Type              string  `json:"type"`
	IsPublic          bool    `json:"is_public"`
	FromName          *string `json:"from_name"`
	Message           *string `json:"message"`
	Amount            string  `json:"amount"`
	URL               *string `json:"url"`
	Email             *string `json:"email"`
	Currency          string  `json:"currency"`
	IsSubscription    bool    `json:"is_subscription_payment"`
	IsFirstSubPayment bool    `json:"is_first_subscription_payment"`
	TransactionID     string  `json:"kofi_transaction_id"`
	TierName          *string `json:"tier_name"`
}

// ParseKofiPayload validate raw JSON theo schema rồi decode
func ParseKofiPayload(raw string) (*KofiPayload, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, NewInvalidPayloadError(err)
	}
	if err := compiledKofiSchema.Validate(doc); err != nil {
		return nil, NewInvalidPayloadError(err)
	}

	var p KofiPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, NewInvalidPayloadError(err)
	}
	return &p, nil
}

func (p *KofiPayload) AmountDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (p *KofiPayload) EmailAddress() string {
	if p.Email == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*p.Email))
}

func (p *KofiPayload) Sender() string {
	if p.FromName == nil {
		return ""
	}
	return strings.TrimSpace(*p.FromName)
}

// "@" phải đứng đầu message hoặc sau ký tự không thuộc handle/email, để "reader@gmail.com" không thành "@gmail"
var handlePattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_.+-])@([A-Za-z0-9_]{3,32})`)

// UsernameCandidates trả về các "@handle" trong message theo thứ tự xuất hiện,
// sau đó là from_name. Người donate ghi "@username" để coin vào đúng tài khoản.
func (p *KofiPayload) UsernameCandidates() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	if p.Message != nil {
		for _, m := range handlePattern.FindAllStringSubmatch(*p.Message, -1) {
			add(m[1])
		}
	}
	add(p.Sender())
	return out
}
