package clicksign

import "github.com/gisce/clicksign/schema"

// Response shapes follow https://api.clickandsign.eu/dtd/clickandsign/v1/en/index.html.

var (
	// ResponseSchema is the header every service response starts with.
	ResponseSchema = schema.New("response",
		schema.Integer("code").Require(),
		schema.Str("status").Require(),
		schema.Str("request").Require(),
		schema.Integer("request_id"),
	)

	// APIResponseSchema is the envelope a Transport returns for every call.
	APIResponseSchema = schema.New("api_response",
		schema.Integer("code").Require(),
		schema.Boolean("error").Require(),
		schema.Dict("result").Require(),
		schema.Str("message"),
	)
)

// Signature start.
var (
	// SignatorySchema keeps free-form labels such as name or surname next to the
	// declared contact fields.
	SignatorySchema = schema.New("signatory",
		schema.Str("phone"),
		schema.Str("email"),
		schema.Str("url_redirect"),
	).KeepUnknown()

	// LevelSchema is one signing step; its signatories sign in parallel.
	LevelSchema = schema.New("level",
		schema.Integer("level_order").Require(),
		schema.Integer("required_signatories_to_complete_level"),
		schema.Many("signatories", SignatorySchema).Require().NonEmpty(),
	)

	// FileSchema is a document attached to the request, content in base64.
	FileSchema = schema.New("file",
		schema.Str("filename").Require(),
		schema.Str("content").
			With(schema.MustExpr("is_base64(value)", "must be base64 encoded (RFC 4648)")),
		schema.Str("file_group").Require(),
		schema.Str("sign_on_landing"),
	)

	// SignatureRequestSchema validates the input of SignatureService.Start.
	SignatureRequestSchema = schema.New("signature",
		schema.Integer("config_id").Require(),
		schema.Str("contract_id").Require(),
		schema.Many("level", LevelSchema).Require().NonEmpty(),
		schema.Many("file", FileSchema).Require().NonEmpty(),
	)

	// StartedSignatorySchema is a signatory as echoed back by start_signature.
	StartedSignatorySchema = schema.New("started_signatory",
		schema.Integer("signatory_id").Require(),
	).KeepUnknown()

	// StartedSignatureSchema is the signature block of a start_signature result.
	StartedSignatureSchema = schema.New("started_signature",
		schema.Integer("signature_id"),
		schema.Str("contract_id"),
		schema.Integer("config_id"),
		schema.Many("signatories", StartedSignatorySchema).Require(),
	).KeepUnknown()

	// StartSignatureSchema validates the result of start_signature.
	StartSignatureSchema = ResponseSchema.Extend("start_signature",
		schema.Nested("signature", StartedSignatureSchema).Require(),
	)
)

// Signatory status.
var (
	// SignatoryDetailsSchema is the state of one signatory.
	SignatoryDetailsSchema = schema.New("signatory_details",
		schema.Integer("signatory_id").Require(),
		schema.Str("signatory_status_date").Require(),
		schema.Str("signatory_email").Require(),
		schema.Str("signatory_status").Require(),
	)

	// SignatoryStatusSchema validates the result of get_signatory_status.
	SignatoryStatusSchema = ResponseSchema.Extend("signatory_status",
		schema.Nested("signatory_details", SignatoryDetailsSchema).Require(),
	)
)

// Documents.
var (
	// DocumentRequestSchema validates the input of SignatureService.Document.
	// signature_id is a string on the wire even though it is numeric elsewhere.
	DocumentRequestSchema = schema.New("document_request",
		schema.Integer("signatory_id").Require(),
		schema.Str("signature_id").Require(),
		schema.Str("file_group").Require(),
	)

	// DocumentFileSchema is one signed file returned by get_document.
	DocumentFileSchema = schema.New("document_file",
		schema.Str("content").Require(),
		schema.Str("filename").Require(),
		schema.Str("file_url").Require(),
	)

	// DocumentSchema validates the result of get_document.
	DocumentSchema = ResponseSchema.Extend("document",
		schema.Nested("document", schema.New("document_files",
			schema.Many("file", DocumentFileSchema).Require(),
		)).Require(),
	)
)

// Configuration.
var (
	// ConfigSummarySchema is an entry of get_config_list.
	ConfigSummarySchema = schema.New("config",
		schema.Integer("config_id").Require(),
		schema.Str("name").Require(),
		schema.Str("status").Require(),
	)

	// ConfigListSchema validates the result of get_config_list.
	ConfigListSchema = ResponseSchema.Extend("config_list",
		schema.Many("config", ConfigSummarySchema).Require(),
	)

	// SMSSchema is an SMS notification block of a configuration.
	SMSSchema = schema.New("sms",
		schema.Str("registered"),
		schema.Str("type"),
		schema.Str("reminder_lapse"),
		schema.Str("sender"),
		schema.Str("recipient"),
		schema.Str("text"),
	)

	// EmailSchema is an email notification block of a configuration.
	EmailSchema = schema.New("email",
		schema.Str("registered"),
		schema.Str("type"),
		schema.Str("reminder_lapse"),
		schema.Str("from_name"),
		schema.Str("to"),
		schema.Str("cc"),
		schema.Str("bcc"),
		schema.Str("subject"),
		schema.Str("body_template"),
		schema.Str("body_free_text"),
		schema.ListOf("attachment_file_group", schema.String),
	)

	// SignatureOnSignSchema lists what the signer must provide on the landing page.
	SignatureOnSignSchema = schema.New("signature_on_sign_required_elements",
		schema.Str("handwritten"),
		schema.Str("otp"),
		schema.Integer("otp_length"),
		schema.Integer("otp_max_retries"),
		schema.Str("otp_sending"),
	)

	// LandingSchema describes the signing landing page.
	LandingSchema = schema.New("landing",
		schema.Str("landing_template"),
		schema.Str("signature_type"),
		schema.Nested("signature_on_sign_required_elements", SignatureOnSignSchema),
	)

	// ConfigInfoSchema is the full detail of a signature configuration.
	ConfigInfoSchema = schema.New("config_info",
		schema.Integer("config_id"),
		schema.Str("name"),
		schema.Integer("expire_lapse"),
		schema.Str("auto_cancel"),
		schema.Str("default_sms_sender"),
		schema.Str("default_email_from_name"),
		schema.Str("registered_company_name"),
		schema.Str("registered_company_vat_number"),
		schema.Str("registered_langs"),
		schema.Str("lang"),
		schema.Str("signatory_cb_url"),
		schema.Str("signature_cb_url"),
		schema.Str("color_background"),
		schema.Str("color_text"),
		schema.Str("color_button_background"),
		schema.Str("color_button_text"),
		schema.Integer("logo"),
		schema.Str("status"),
		schema.ListOf("signatory_fields", schema.String),
		schema.Many("sms", SMSSchema),
		schema.Many("email", EmailSchema),
		schema.Nested("landing", LandingSchema),
	)

	// ConfigDetailSchema validates the result of get_config.
	ConfigDetailSchema = ResponseSchema.Extend("config_detail",
		schema.Nested("config", ConfigInfoSchema).Require(),
	)
)

// CallbackSchema validates notifications pushed by the service to the configured
// signature and signatory callback URLs.
var CallbackSchema = schema.New("callback",
	schema.Integer("signature_id").Require(),
	schema.Integer("signatory_id").Require(),
	schema.Str("contract_id").Require(),
	schema.Str("status").Require().With(schema.OneOf(statusNames()...)),
	schema.Str("status_date").Require(),
)
