package client

import (
	"context"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/profile"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
)

const errProfileNotSet = "KYC Profile not configured, please use SetProfile before calling this function."

// Face verification and liveness checks
type Biometric struct {
	exec   *Executor
	params *params
}

func NewBiometric(exec *Executor) *Biometric {
	return &Biometric{
		exec: exec,
		params: newParams(map[string]any{
			"client":     static.ClientLibrary,
			"profile":    "",
			"customData": "",
		}),
	}
}

func (b *Biometric) SetProfile(p *profile.Profile) error {
	return b.params.setProfile(p)
}

// Arbitrary string saved with the transaction, e.g. a customer reference.
func (b *Biometric) SetCustomData(customData string) {
	b.params.set("customData", customData)
}

// SetParam sets any API parameter, including ones without a dedicated setter.
func (b *Biometric) SetParam(key string, value any) {
	b.params.set(key, value)
}

// VerifyFace performs 1:1 face verification of a selfie photo or video
// against a reference face image. The photo takes precedence over the video.
func (b *Biometric) VerifyFace(ctx context.Context, reference, facePhoto, faceVideo string) (*Response, error) {
	if !b.params.profileSet() {
		return nil, models.InvalidArgument(errProfileNotSet)
	}
	if err := required(reference, "Reference face image required."); err != nil {
		return nil, err
	}
	if facePhoto == "" && faceVideo == "" {
		return nil, models.InvalidArgument("Verification face image required.")
	}

	payload := b.params.snapshot()
	var err error
	if payload["reference"], err = b.exec.Inputs.Resolve(reference, true); err != nil {
		return nil, err
	}
	if err := b.resolveFace(payload, facePhoto, faceVideo); err != nil {
		return nil, err
	}

	return b.exec.Post(ctx, "face", payload, DefaultTimeout)
}

// VerifyLiveness performs a standalone liveness check on a selfie photo or
// video.
func (b *Biometric) VerifyLiveness(ctx context.Context, facePhoto, faceVideo string) (*Response, error) {
	if !b.params.profileSet() {
		return nil, models.InvalidArgument(errProfileNotSet)
	}
	if facePhoto == "" && faceVideo == "" {
		return nil, models.InvalidArgument("Verification face image required.")
	}

	payload := b.params.snapshot()
	if err := b.resolveFace(payload, facePhoto, faceVideo); err != nil {
		return nil, err
	}

	return b.exec.Post(ctx, "liveness", payload, DefaultTimeout)
}

func (b *Biometric) resolveFace(payload map[string]any, facePhoto, faceVideo string) error {
	var err error
	if facePhoto != "" {
		payload["face"], err = b.exec.Inputs.Resolve(facePhoto, true)
	} else {
		payload["faceVideo"], err = b.exec.Inputs.Resolve(faceVideo, false)
	}
	return err
}
