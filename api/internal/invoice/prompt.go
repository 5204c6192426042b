package invoice

// SystemPrompt describes the extraction task.
const SystemPrompt = `
You are a specialist in comprehending import and export Invoices.
Input images in the form of import and export invoices will be provided to you,
and your task is to respond with a valid JSON object based on the content of the input image.
`

// UserPrompt pins the exact output schema.
const UserPrompt = `Convert Invoice data into JSON format with this structure. Always return this exact JSON structure even if some values are missing:

{
  "invoice_header": {
    "company_name": "",
    "address": "",
    "invoice_number": "",
    "date": "",
    "customer_details": {
      "name": "",
      "address": "",
      "gstin": ""
    }
  },
  "invoice_details": [
    {
      "item_number": "",
      "item_name": "",
      "quantity": "",
      "unit": "",
      "rate": "",
      "amount": ""
    }
  ],
  "totals": {
    "subtotal": "",
    "cgst_percentage": "",
    "cgst_amount": "",
    "sgst_percentage": "",
    "sgst_amount": "",
    "total": ""
  }
}

Do not wrap the response in triple backticks or Markdown. Respond with only JSON text.
`
