package awb

// PromptVersion identifies the extraction prompt revision. Logged with each
// run so responses can be traced back to the instruction text that produced
// them.
const PromptVersion = "v1"

// ExtractionPrompt is the fixed instruction sent alongside the rasterized
// page. The embedded schema is the contract the model is held to: every key
// below is expected verbatim in the reply, including the misspelled
// "Total Other Charges Due Carrie" key. Correcting that typo here would break
// matching against real responses, so it stays.
const ExtractionPrompt = `This is an Air Waybill, extract all information in it with the headers then export it in json format. Do not make up any header. Do not make up any information. Do not include ` + "```json ... ```" + ` in the output.
{"Air Waybill Number": " ",
 "Shipper's Name and Address": " ",
 "Shipper's Account Number": " ",
 "Consignee's Name and Address": " ",
 "Issuing Carrier's Agent Name and City": "",
 "Issued by": " ",
 "Agent's IATA Code": "",
 "Account No": "",
 "Airport of Departure (Addr. of First Carrier) and Requested Routing": "",
 "Routing and Destination": [{"to": " ", "by": " "}],
 "Airport of Destination": " ",
 "Flight/Date": " ",
 "Handling Information": " ",
 "Accounting Information": " ",
 "Currency Code": " ",
 "CHGS": [{"CHGS Code":" ", "WT/VAL": [{"PPD": " ", "COLL":" "}], "Other": [{"PPD": " ", "COLL":" "}]}],
 "Declared Value for Carriage": " ",
 "Declared Value for Customs": " ",
 "Amount of Insurance": "",
 "Goods Description Table Rows": [
    {
    "No. of Pieces RCP": "",
    "Gross Weight": "",
    "kg/lb": "",
    "Rate Class / Commodity Item No.": "",
    "Chargeable Weight": "",
    "Rate": "",
    "Charge": "",
    "Total": "",
    "Nature and Quantity of Goods (incl. Dimensions or Volume)": ""
    }],
 "Charges Details": [
    {
    "Weight Charge": {"Prepaid": "", "Collect": ""},
    "Valuation Charge": {"Prepaid": "", "Collect": ""},
    "Tax": {"Prepaid": "", "Collect": ""},
    "Total Other Charges Due Agent": {"Prepaid": "", "Collect": ""},
    "Total Other Charges Due Carrie": {"Prepaid": "", "Collect": ""},
    "Total Prepaid": "",
    "Total Collect": "",
    "Currency Conversion Rates": "",
    "CC Charges at Dest Currency":""
    }],
 "Signature of Shipper of his Agent": "",
 "Executed on (date)": "",
 "at (place)": "",
 "Signature of Issuing Carrier or its Agent": ""
}`
