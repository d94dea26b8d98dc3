package clicksign

import (
	"github.com/gisce/clicksign/internal/expr"
	"github.com/gisce/clicksign/view"
)

// Header is the response header shared by every service result.
type Header struct {
	Code      int64
	Status    string
	Request   string
	RequestID int64
}

func decodeHeader(v view.View) Header {
	return Header{
		Code:      v.Int("code"),
		Status:    v.String("status"),
		Request:   v.String("request"),
		RequestID: v.Int("request_id"),
	}
}

// Signatory is a signatory assigned by start_signature.
type Signatory struct {
	SignatoryID int64
	Phone       string
	Email       string
	URLRedirect string
	// Labels holds the free-form string fields echoed back for the signatory.
	Labels map[string]string
}

var signatoryFields = map[string]struct{}{
	"signatory_id": {},
	"phone":        {},
	"email":        {},
	"url_redirect": {},
}

func decodeSignatory(v view.View) Signatory {
	s := Signatory{
		SignatoryID: v.Int("signatory_id"),
		Phone:       v.String("phone"),
		Email:       v.String("email"),
		URLRedirect: v.String("url_redirect"),
	}
	for _, key := range v.Keys() {
		if _, known := signatoryFields[key]; known {
			continue
		}
		value := v.String(key)
		if value == "" {
			continue
		}
		if s.Labels == nil {
			s.Labels = make(map[string]string)
		}
		s.Labels[key] = value
	}
	return s
}

// StartResult is the outcome of SignatureService.Start.
type StartResult struct {
	Header
	SignatureID int64
	ContractID  string
	ConfigID    int64
	Signatories []Signatory
	// View exposes the full normalized response.
	View view.View
}

func decodeStartResult(v view.View) *StartResult {
	sig := v.Get("signature")
	out := &StartResult{
		Header:      decodeHeader(v),
		SignatureID: sig.Int("signature_id"),
		ContractID:  sig.String("contract_id"),
		ConfigID:    sig.Int("config_id"),
		View:        v,
	}
	for _, item := range sig.List("signatories") {
		out.Signatories = append(out.Signatories, decodeSignatory(item))
	}
	return out
}

// SignatoryIDs returns the assigned identifiers in request order.
func (r *StartResult) SignatoryIDs() []int64 {
	ids := make([]int64, len(r.Signatories))
	for i, s := range r.Signatories {
		ids[i] = s.SignatoryID
	}
	return ids
}

// SignatoryStatus is the outcome of SignatureService.Status.
type SignatoryStatus struct {
	Header
	SignatoryID int64
	Status      string
	StatusDate  string
	Email       string
	View        view.View
}

func decodeSignatoryStatus(v view.View) *SignatoryStatus {
	details := v.Get("signatory_details")
	return &SignatoryStatus{
		Header:      decodeHeader(v),
		SignatoryID: details.Int("signatory_id"),
		Status:      details.String("signatory_status"),
		StatusDate:  details.String("signatory_status_date"),
		Email:       details.String("signatory_email"),
		View:        v,
	}
}

// DocumentFile is one file returned by get_document.
type DocumentFile struct {
	Filename string
	Content  string
	FileURL  string
}

// Decode returns the decoded file content.
func (f DocumentFile) Decode() ([]byte, error) {
	return expr.DecodeBase64(f.Content)
}

// Document is the outcome of SignatureService.Document.
type Document struct {
	Header
	Files []DocumentFile
	View  view.View
}

func decodeDocument(v view.View) *Document {
	out := &Document{Header: decodeHeader(v), View: v}
	for _, item := range v.Get("document").List("file") {
		out.Files = append(out.Files, DocumentFile{
			Filename: item.String("filename"),
			Content:  item.String("content"),
			FileURL:  item.String("file_url"),
		})
	}
	return out
}

// ConfigSummary is one entry of get_config_list.
type ConfigSummary struct {
	ConfigID int64
	Name     string
	Status   string
}

// ConfigList is the outcome of ConfigurationService.List.
type ConfigList struct {
	Header
	Configs []ConfigSummary
	View    view.View
}

func decodeConfigList(v view.View) *ConfigList {
	out := &ConfigList{Header: decodeHeader(v), View: v}
	for _, item := range v.List("config") {
		out.Configs = append(out.Configs, ConfigSummary{
			ConfigID: item.Int("config_id"),
			Name:     item.String("name"),
			Status:   item.String("status"),
		})
	}
	return out
}

// SMSConfig is an SMS notification block of a configuration.
type SMSConfig struct {
	Registered    string
	Type          string
	ReminderLapse string
	Sender        string
	Recipient     string
	Text          string
}

// EmailConfig is an email notification block of a configuration.
type EmailConfig struct {
	Registered          string
	Type                string
	ReminderLapse       string
	FromName            string
	To                  string
	CC                  string
	BCC                 string
	Subject             string
	BodyTemplate        string
	BodyFreeText        string
	AttachmentFileGroup []string
}

// SignOnSignRequirements lists what the landing page asks for when signing.
type SignOnSignRequirements struct {
	Handwritten   string
	OTP           string
	OTPLength     int64
	OTPMaxRetries int64
	OTPSending    string
}

// LandingConfig describes the signing landing page.
type LandingConfig struct {
	Template      string
	SignatureType string
	Requirements  SignOnSignRequirements
}

// ConfigInfo is the detail of one configuration.
type ConfigInfo struct {
	ConfigID                   int64
	Name                       string
	ExpireLapse                int64
	AutoCancel                 string
	DefaultSMSSender           string
	DefaultEmailFromName       string
	RegisteredCompanyName      string
	RegisteredCompanyVATNumber string
	RegisteredLangs            string
	Lang                       string
	SignatoryCallbackURL       string
	SignatureCallbackURL       string
	ColorBackground            string
	ColorText                  string
	ColorButtonBackground      string
	ColorButtonText            string
	Logo                       int64
	Status                     string
	SignatoryFields            []string
	SMS                        []SMSConfig
	Email                      []EmailConfig
	Landing                    LandingConfig
}

// ConfigDetail is the outcome of ConfigurationService.Get.
type ConfigDetail struct {
	Header
	Config ConfigInfo
	View   view.View
}

func decodeConfigDetail(v view.View) *ConfigDetail {
	c := v.Get("config")
	info := ConfigInfo{
		ConfigID:                   c.Int("config_id"),
		Name:                       c.String("name"),
		ExpireLapse:                c.Int("expire_lapse"),
		AutoCancel:                 c.String("auto_cancel"),
		DefaultSMSSender:           c.String("default_sms_sender"),
		DefaultEmailFromName:       c.String("default_email_from_name"),
		RegisteredCompanyName:      c.String("registered_company_name"),
		RegisteredCompanyVATNumber: c.String("registered_company_vat_number"),
		RegisteredLangs:            c.String("registered_langs"),
		Lang:                       c.String("lang"),
		SignatoryCallbackURL:       c.String("signatory_cb_url"),
		SignatureCallbackURL:       c.String("signature_cb_url"),
		ColorBackground:            c.String("color_background"),
		ColorText:                  c.String("color_text"),
		ColorButtonBackground:      c.String("color_button_background"),
		ColorButtonText:            c.String("color_button_text"),
		Logo:                       c.Int("logo"),
		Status:                     c.String("status"),
		SignatoryFields:            c.Strings("signatory_fields"),
	}
	for _, item := range c.List("sms") {
		info.SMS = append(info.SMS, SMSConfig{
			Registered:    item.String("registered"),
			Type:          item.String("type"),
			ReminderLapse: item.String("reminder_lapse"),
			Sender:        item.String("sender"),
			Recipient:     item.String("recipient"),
			Text:          item.String("text"),
		})
	}
	for _, item := range c.List("email") {
		info.Email = append(info.Email, EmailConfig{
			Registered:          item.String("registered"),
			Type:                item.String("type"),
			ReminderLapse:       item.String("reminder_lapse"),
			FromName:            item.String("from_name"),
			To:                  item.String("to"),
			CC:                  item.String("cc"),
			BCC:                 item.String("bcc"),
			Subject:             item.String("subject"),
			BodyTemplate:        item.String("body_template"),
			BodyFreeText:        item.String("body_free_text"),
			AttachmentFileGroup: item.Strings("attachment_file_group"),
		})
	}
	landing := c.Get("landing")
	req := landing.Get("signature_on_sign_required_elements")
	info.Landing = LandingConfig{
		Template:      landing.String("landing_template"),
		SignatureType: landing.String("signature_type"),
		Requirements: SignOnSignRequirements{
			Handwritten:   req.String("handwritten"),
			OTP:           req.String("otp"),
			OTPLength:     req.Int("otp_length"),
			OTPMaxRetries: req.Int("otp_max_retries"),
			OTPSending:    req.String("otp_sending"),
		},
	}
	return &ConfigDetail{Header: decodeHeader(v), Config: info, View: v}
}
