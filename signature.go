package clicksign

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gisce/clicksign/view"
)

// SignatureService starts signature requests and follows their signatories.
type SignatureService struct {
	caller *caller
}

// ValidateSignatureRequest validates data against SignatureRequestSchema without calling
// the service.
func ValidateSignatureRequest(data map[string]any) (view.View, error) {
	normalized, err := SignatureRequestSchema.Validate(data)
	if err != nil {
		return view.View{}, validationError("signature request", err)
	}
	return view.New(normalized), nil
}

// Start validates data as a signature request and submits it. The result lists the
// signatory_id assigned to every signatory.
func (s *SignatureService) Start(ctx context.Context, data map[string]any) (*StartResult, error) {
	normalized, err := SignatureRequestSchema.Validate(data)
	if err != nil {
		return nil, s.caller.rejectInput(ResourceStartSignature, "signature request", err)
	}
	v, err := s.caller.do(ctx, call{
		resource: ResourceStartSignature,
		id:       fmt.Sprintf("contract %v", normalized["contract_id"]),
		payload:  map[string]any{"signature": normalized},
		result:   StartSignatureSchema,
	})
	if err != nil {
		return nil, err
	}
	return decodeStartResult(v), nil
}

// Status reports the current state of one signatory.
func (s *SignatureService) Status(ctx context.Context, signatoryID int64) (*SignatoryStatus, error) {
	v, err := s.caller.do(ctx, call{
		resource: ResourceSignatoryStatus,
		id:       "signatory " + strconv.FormatInt(signatoryID, 10),
		payload:  map[string]any{"signatory_id": signatoryID},
		result:   SignatoryStatusSchema,
	})
	if err != nil {
		return nil, err
	}
	return decodeSignatoryStatus(v), nil
}

// Document retrieves the signed files of a signatory; data must match
// DocumentRequestSchema.
func (s *SignatureService) Document(ctx context.Context, data map[string]any) (*Document, error) {
	normalized, err := DocumentRequestSchema.Validate(data)
	if err != nil {
		return nil, s.caller.rejectInput(ResourceDocument, "document request", err)
	}
	v, err := s.caller.do(ctx, call{
		resource: ResourceDocument,
		id:       fmt.Sprintf("signatory %v", normalized["signatory_id"]),
		payload:  normalized,
		result:   DocumentSchema,
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument(v), nil
}
