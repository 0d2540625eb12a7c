// Package render maps a decoded waybill record onto the sectioned, read-only
// layout the front end displays. It is a pure mapping: a missing or malformed
// field becomes a visible placeholder, never an error, because the upstream
// model output is not schema-guaranteed.
package render

import (
	"fmt"
	"strings"

	"github.com/aircargo-labs/awb-extractor/internal/awb"
)

// No-data indicators, shown when a nested list is absent or empty.
const (
	NoGoodsData   = "No goods description data available"
	NoChargesData = "No charges details available"
	NoRoutingData = "Routing Information: " + awb.Placeholder
)

// Item is one labeled value in a section.
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Group is a repeated sub-record, e.g. one goods row.
type Group struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Section is one block of the layout.
type Section struct {
	Title  string   `json:"title"`
	Items  []Item   `json:"items,omitempty"`
	Lines  []string `json:"lines,omitempty"`
	Groups []Group  `json:"groups,omitempty"`
	NoData string   `json:"no_data,omitempty"` // set when Lines and Groups were expected but empty
}

// Document is the full rendered layout.
type Document struct {
	Sections []Section `json:"sections"`
}

// Build renders rec into the layout. A nil record renders a complete layout
// of placeholders.
func Build(rec awb.Record) *Document {
	return &Document{Sections: []Section{
		documentDetails(rec),
		shipper(rec),
		consignee(rec),
		agentAndRouting(rec),
		goods(rec),
		charges(rec),
		declarations(rec),
		additional(rec),
		signatures(rec),
	}}
}

func documentDetails(rec awb.Record) Section {
	return Section{
		Title: "Document Details",
		Items: []Item{
			{"Air Waybill Number", rec.Field(awb.FieldWaybillNumber)},
			{"Flight/Date", rec.Field(awb.FieldFlightDate)},
			{"Currency Code", rec.Field(awb.FieldCurrencyCode)},
			{"Airport of Departure", rec.Field(awb.FieldDepartureAirport)},
			{"Airport of Destination", rec.Field(awb.FieldDestinationAirport)},
			{"Agent's IATA Code", rec.Field(awb.FieldAgentIATACode)},
		},
	}
}

func shipper(rec awb.Record) Section {
	return Section{
		Title: "Shipper Information",
		Items: []Item{
			{"Shipper's Name and Address", rec.Field(awb.FieldShipperNameAddress)},
			{"Account Number", rec.Field(awb.FieldShipperAccountNo)},
		},
	}
}

func consignee(rec awb.Record) Section {
	return Section{
		Title: "Consignee Information",
		Items: []Item{
			{"Consignee's Name and Address", rec.Field(awb.FieldConsignee)},
		},
	}
}

func agentAndRouting(rec awb.Record) Section {
	s := Section{
		Title: "Agent & Routing Details",
		Items: []Item{
			{"Issuing Carrier's Agent", rec.Field(awb.FieldIssuingAgent)},
			{"Issued by", rec.Field(awb.FieldIssuedBy)},
			{"Account No", rec.Field(awb.FieldAccountNo)},
		},
	}
	for _, leg := range rec.RoutingLegs() {
		s.Lines = append(s.Lines, fmt.Sprintf("To: %s | By: %s", leg.To, leg.By))
	}
	if len(s.Lines) == 0 {
		s.NoData = NoRoutingData
	}
	return s
}

func goods(rec awb.Record) Section {
	s := Section{Title: "Goods Description"}
	for i, row := range rec.List(awb.FieldGoodsRows) {
		gross := row.Field("Gross Weight")
		if unit := row.Field("kg/lb"); unit != awb.Placeholder && gross != awb.Placeholder {
			gross = gross + " " + unit
		}
		s.Groups = append(s.Groups, Group{
			Title: fmt.Sprintf("Item %d", i+1),
			Items: []Item{
				{"Pieces", row.Field("No. of Pieces RCP")},
				{"Gross Weight", gross},
				{"Chargeable Weight", row.Field("Chargeable Weight")},
				{"Rate", row.Field("Rate")},
				{"Charge", row.Field("Charge")},
				{"Total", row.Field("Total")},
				{"Rate Class/Commodity", row.Field("Rate Class / Commodity Item No.")},
				{"Nature and Quantity of Goods", row.Field("Nature and Quantity of Goods (incl. Dimensions or Volume)")},
			},
		})
	}
	if len(s.Groups) == 0 {
		s.NoData = NoGoodsData
	}
	return s
}

// chargeKeys are the Prepaid/Collect pairs of the charges summary block, in
// display order. "Due Carrie" is the literal key the prompt schema uses.
var chargeKeys = []string{
	"Weight Charge",
	"Valuation Charge",
	"Tax",
	"Total Other Charges Due Agent",
	"Total Other Charges Due Carrie",
}

func charges(rec awb.Record) Section {
	s := Section{Title: "Charges Details"}
	for i, code := range rec.List(awb.FieldCharges) {
		g := Group{
			Title: fmt.Sprintf("CHGS %d", i+1),
			Items: []Item{{"CHGS Code", code.Field("CHGS Code")}},
		}
		for _, pair := range code.List("WT/VAL") {
			g.Items = append(g.Items,
				Item{"WT/VAL PPD", pair.Field("PPD")},
				Item{"WT/VAL COLL", pair.Field("COLL")})
		}
		for _, pair := range code.List("Other") {
			g.Items = append(g.Items,
				Item{"Other PPD", pair.Field("PPD")},
				Item{"Other COLL", pair.Field("COLL")})
		}
		s.Groups = append(s.Groups, g)
	}
	for _, detail := range rec.List(awb.FieldChargesDetails) {
		prepaid := Group{Title: "Prepaid Charges"}
		collect := Group{Title: "Collect Charges"}
		for _, key := range chargeKeys {
			pair := detail.Child(key)
			prepaid.Items = append(prepaid.Items, Item{key, pair.Field("Prepaid")})
			collect.Items = append(collect.Items, Item{key, pair.Field("Collect")})
		}
		prepaid.Items = append(prepaid.Items, Item{"Total Prepaid", detail.Field("Total Prepaid")})
		collect.Items = append(collect.Items, Item{"Total Collect", detail.Field("Total Collect")})

		conversion := Group{
			Title: "Conversion",
			Items: []Item{
				{"Currency Conversion Rates", detail.Field("Currency Conversion Rates")},
				{"CC Charges at Dest Currency", detail.Field("CC Charges at Dest Currency")},
			},
		}
		s.Groups = append(s.Groups, prepaid, collect, conversion)
	}
	if len(s.Groups) == 0 {
		s.NoData = NoChargesData
	}
	return s
}

func declarations(rec awb.Record) Section {
	return Section{
		Title: "Declarations & Insurance",
		Items: []Item{
			{"Declared Value for Carriage", rec.Field(awb.FieldDeclaredCarriage)},
			{"Declared Value for Customs", rec.Field(awb.FieldDeclaredCustoms)},
			{"Amount of Insurance", rec.Field(awb.FieldInsuranceAmount)},
		},
	}
}

func additional(rec awb.Record) Section {
	return Section{
		Title: "Additional Information",
		Items: []Item{
			{"Handling Information", rec.Field(awb.FieldHandlingInfo)},
			{"Accounting Information", rec.Field(awb.FieldAccountingInfo)},
		},
	}
}

func signatures(rec awb.Record) Section {
	return Section{
		Title: "Signatures & Execution",
		Items: []Item{
			{"Executed on", rec.Field(awb.FieldExecutedOn)},
			{"At (place)", rec.Field(awb.FieldExecutedAt)},
			{"Shipper/Agent Signature", rec.Field(awb.FieldShipperSignature)},
			{"Carrier/Agent Signature", rec.Field(awb.FieldCarrierSignature)},
		},
	}
}

// PlainText renders the layout as text for the CLI front end.
func (d *Document) PlainText() string {
	var b strings.Builder
	for _, sec := range d.Sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## ")
		b.WriteString(sec.Title)
		b.WriteString("\n")
		for _, item := range sec.Items {
			fmt.Fprintf(&b, "%s: %s\n", item.Label, item.Value)
		}
		for _, line := range sec.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		for _, group := range sec.Groups {
			fmt.Fprintf(&b, "[%s]\n", group.Title)
			for _, item := range group.Items {
				fmt.Fprintf(&b, "  %s: %s\n", item.Label, item.Value)
			}
		}
		if sec.NoData != "" {
			b.WriteString(sec.NoData)
			b.WriteString("\n")
		}
	}
	return b.String()
}
