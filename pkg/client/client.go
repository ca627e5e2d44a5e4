// Package client is the ID Analyzer API client: a shared request Executor
// and one resource type per API family.
//
//	c, err := client.New("", client.WithRegion("eu"), client.WithThrowAPIError(true))
//	if err != nil {
//		return err
//	}
//	p := profile.New(profile.SecurityMedium)
//	_ = c.Scanner.SetProfile(p)
//	resp, err := c.Scanner.Scan(ctx, "id_front.jpg", "", "selfie.jpg", "")
//
// Validation failures are *models.InvalidArgumentError and API error
// envelopes are *models.APIError. Without WithThrowAPIError the envelope is
// only available through Response.Err.
package client

// Client bundles one instance of every resource type around a shared
// Executor.
type Client struct {
	*Executor
	Biometric   *Biometric
	Scanner     *Scanner
	Contract    *Contract
	Transaction *Transaction
	Docupass    *Docupass
}

func New(apiKey string, opts ...Option) (*Client, error) {
	exec, err := NewExecutor(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithExecutor(exec), nil
}

func NewWithExecutor(exec *Executor) *Client {
	return &Client{
		Executor:    exec,
		Biometric:   NewBiometric(exec),
		Scanner:     NewScanner(exec),
		Contract:    NewContract(exec),
		Transaction: NewTransaction(exec),
		Docupass:    NewDocupass(exec),
	}
}
