// Package awb holds the Air Waybill record type and the extraction prompt.
package awb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Placeholder is shown for any field that is absent or blank.
const Placeholder = "N/A"

// UnknownWaybill is the filename token used when no waybill number was extracted.
const UnknownWaybill = "unknown"

// Record is a decoded Air Waybill extraction result. Every field is optional
// and the model may return keys outside the prompt schema; a map keeps those
// extra keys intact for the raw view and the export.
type Record map[string]any

// Field names the extraction prompt instructs the model to use. These are
// exact and case-sensitive, including the misspelled "Due Carrie" key, which
// matches the schema text the model is instructed against and must not be
// corrected.
const (
	FieldWaybillNumber      = "Air Waybill Number"
	FieldShipperNameAddress = "Shipper's Name and Address"
	FieldShipperAccountNo   = "Shipper's Account Number"
	FieldConsignee          = "Consignee's Name and Address"
	FieldIssuingAgent       = "Issuing Carrier's Agent Name and City"
	FieldIssuedBy           = "Issued by"
	FieldAgentIATACode      = "Agent's IATA Code"
	FieldAccountNo          = "Account No"
	FieldDepartureAirport   = "Airport of Departure (Addr. of First Carrier) and Requested Routing"
	FieldRouting            = "Routing and Destination"
	FieldDestinationAirport = "Airport of Destination"
	FieldFlightDate         = "Flight/Date"
	FieldHandlingInfo       = "Handling Information"
	FieldAccountingInfo     = "Accounting Information"
	FieldCurrencyCode       = "Currency Code"
	FieldCharges            = "CHGS"
	FieldDeclaredCarriage   = "Declared Value for Carriage"
	FieldDeclaredCustoms    = "Declared Value for Customs"
	FieldInsuranceAmount    = "Amount of Insurance"
	FieldGoodsRows          = "Goods Description Table Rows"
	FieldChargesDetails     = "Charges Details"
	FieldShipperSignature   = "Signature of Shipper of his Agent"
	FieldExecutedOn         = "Executed on (date)"
	FieldExecutedAt         = "at (place)"
	FieldCarrierSignature   = "Signature of Issuing Carrier or its Agent"
)

// Field returns the scalar value for key, or Placeholder when the key is
// absent, nil, or blank. Non-string scalars are formatted as text so a model
// that returned a bare number still renders.
func (r Record) Field(key string) string {
	if r == nil {
		return Placeholder
	}
	v, ok := r[key]
	if !ok || v == nil {
		return Placeholder
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Placeholder
		}
		return s
	case float64, bool, json.Number:
		return fmt.Sprint(t)
	default:
		return Placeholder
	}
}

// Has reports whether key holds a non-blank scalar value.
func (r Record) Has(key string) bool {
	return r.Field(key) != Placeholder
}

// List returns the nested records under key. Non-record elements are skipped
// rather than failing the whole view, and a missing or malformed key yields
// an empty slice.
func (r Record) List(key string) []Record {
	if r == nil {
		return nil
	}
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Child returns the nested record under key, or an empty record when the key
// is absent or not a record. Used for the Prepaid/Collect charge pairs.
func (r Record) Child(key string) Record {
	if r == nil {
		return Record{}
	}
	if m, ok := r[key].(map[string]any); ok {
		return Record(m)
	}
	return Record{}
}

// WaybillNumber returns the extracted waybill number, or UnknownWaybill when
// it is absent or blank.
func (r Record) WaybillNumber() string {
	if n := r.Field(FieldWaybillNumber); n != Placeholder {
		return n
	}
	return UnknownWaybill
}

// RoutingLeg is one leg of the Routing and Destination list.
type RoutingLeg struct {
	To string
	By string
}

// RoutingLegs decodes the routing list, skipping entries that are not records.
func (r Record) RoutingLegs() []RoutingLeg {
	items := r.List(FieldRouting)
	legs := make([]RoutingLeg, 0, len(items))
	for _, item := range items {
		legs = append(legs, RoutingLeg{
			To: item.Field("to"),
			By: item.Field("by"),
		})
	}
	return legs
}

// MarshalIndent pretty-prints the record exactly as decoded, extra keys
// included. This is the payload for the export download and the raw view.
func (r Record) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
