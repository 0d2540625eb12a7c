// Package export produces the downloadable renditions of a decoded waybill
// record: pretty-printed JSON (verbatim record) and an XLSX workbook.
package export

import (
	"fmt"
	"regexp"

	"github.com/aircargo-labs/awb-extractor/internal/awb"
	"github.com/xuri/excelize/v2"
)

// Format selects the export rendition.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// MIME returns the content type for the format.
func (f Format) MIME() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename derives the download name from the extracted waybill number,
// falling back to the literal "unknown" token when none was extracted.
func Filename(rec awb.Record, format Format) string {
	number := unsafeFilename.ReplaceAllString(rec.WaybillNumber(), "_")
	return fmt.Sprintf("awb_data_%s.%s", number, format)
}

// JSON returns the pretty-printed record exactly as decoded.
func JSON(rec awb.Record) ([]byte, error) {
	return rec.MarshalIndent()
}

// XLSX returns a workbook with a summary sheet of the scalar fields and a
// Goods sheet with one row per goods entry.
func XLSX(rec awb.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "AWB"
	if err := writeSummarySheet(f, summary, rec); err != nil {
		return nil, err
	}
	if err := writeGoodsSheet(f, rec); err != nil {
		return nil, err
	}

	index, err := f.GetSheetIndex(summary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	// drop the default sheet created by NewFile
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// summaryFields lists the scalar fields written to the summary sheet, in
// document order.
var summaryFields = []string{
	awb.FieldWaybillNumber,
	awb.FieldShipperNameAddress,
	awb.FieldShipperAccountNo,
	awb.FieldConsignee,
	awb.FieldIssuingAgent,
	awb.FieldIssuedBy,
	awb.FieldAgentIATACode,
	awb.FieldAccountNo,
	awb.FieldDepartureAirport,
	awb.FieldDestinationAirport,
	awb.FieldFlightDate,
	awb.FieldHandlingInfo,
	awb.FieldAccountingInfo,
	awb.FieldCurrencyCode,
	awb.FieldDeclaredCarriage,
	awb.FieldDeclaredCustoms,
	awb.FieldInsuranceAmount,
	awb.FieldShipperSignature,
	awb.FieldExecutedOn,
	awb.FieldExecutedAt,
	awb.FieldCarrierSignature,
}

func writeSummarySheet(f *excelize.File, sheet string, rec awb.Record) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	row := 1
	write := func(col int, v string) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for _, field := range summaryFields {
		write(1, field)
		write(2, rec.Field(field))
		row++
	}
	for i, leg := range rec.RoutingLegs() {
		write(1, fmt.Sprintf("Routing %d", i+1))
		write(2, fmt.Sprintf("To: %s | By: %s", leg.To, leg.By))
		row++
	}
	return nil
}

// goodsColumns are the nine per-row fields of the goods description table.
var goodsColumns = []string{
	"No. of Pieces RCP",
	"Gross Weight",
	"kg/lb",
	"Rate Class / Commodity Item No.",
	"Chargeable Weight",
	"Rate",
	"Charge",
	"Total",
	"Nature and Quantity of Goods (incl. Dimensions or Volume)",
}

func writeGoodsSheet(f *excelize.File, rec awb.Record) error {
	const sheet = "Goods"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, h := range goodsColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	row := 2
	for _, goods := range rec.List(awb.FieldGoodsRows) {
		for i, h := range goodsColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, goods.Field(h))
		}
		row++
	}
	return nil
}
