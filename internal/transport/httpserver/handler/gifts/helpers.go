package gifts

import (
	"encoding/json"
	"net/http"

	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	"github.com/shopspring/decimal"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}

func parseIntParam(value string, fallback int) (int, error) {
	return commonhandler.ParseIntParam(value, fallback)
}

type optionalNullableString struct {
	Set   bool
	Value *string
}

func (o *optionalNullableString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value
	return nil
}

type optionalNullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}

func (o *optionalNullableDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value decimal.Decimal
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value
	return nil
}

type optionalStringSlice struct {
	Set    bool
	Values []string
}

func (o *optionalStringSlice) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Values = nil
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	o.Values = values
	return nil
}
