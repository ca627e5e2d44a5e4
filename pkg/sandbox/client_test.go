package sandbox

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/policy"
	"github.com/idanalyzer/idanalyzer-go/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSandboxClient(t *testing.T, key string) (*API, *client.Client) {
	api := newTestAPI()
	srv := httptest.NewServer(api.Gin)
	t.Cleanup(srv.Close)

	c, err := client.New(key,
		client.WithEndpoint(srv.URL),
		client.WithThrowAPIError(true),
	)
	require.NoError(t, err)
	return api, c
}

func writeImage(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClientInvalidKey(t *testing.T) {
	_, c := newSandboxClient(t, "wrong")

	_, err := c.Transaction.GetTransaction(context.TODO(), "tx1")
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "401", apiErr.Code)
	assert.Equal(t, "Invalid API key", apiErr.Message)
}

func TestClientScanRoundTrip(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()
	dir := t.TempDir()

	require.NoError(t, c.Scanner.SetProfile(profile.New(profile.SecurityMedium)))
	c.Scanner.SetCustomData("customer-1")
	require.NoError(t, c.Scanner.VerifyUserInformation("", "Jane Doe", "1990/04/20", "", "", ""))

	resp, err := c.Scanner.Scan(ctx, writeImage(t, "front.jpg", "front image"), "", writeImage(t, "face.jpg", "selfie"), "")
	require.NoError(t, err)

	var tx models.Transaction
	require.NoError(t, resp.Decode(&tx))
	assert.Equal(t, "accept", tx.Decision)
	assert.Equal(t, profile.SecurityMedium, tx.ProfileID)
	assert.Equal(t, "customer-1", tx.CustomData)
	assert.Empty(t, tx.Warning)
	require.Contains(t, tx.OutputImage, "front")

	resp, err = c.Transaction.GetTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, tx.TransactionID, resp.String("transactionId"))

	front := filepath.Join(dir, "front.jpg")
	require.NoError(t, c.Transaction.SaveImage(ctx, tx.OutputImage["front"], front))
	data, err := os.ReadFile(front)
	require.NoError(t, err)
	assert.Equal(t, "front image", string(data))

	_, err = c.Transaction.UpdateTransaction(ctx, tx.TransactionID, "review")
	require.NoError(t, err)

	f := client.DefaultTransactionFilter()
	f.Decision = "review"
	resp, err = c.Transaction.ListTransaction(ctx, f)
	require.NoError(t, err)
	var list models.TransactionList
	require.NoError(t, resp.Decode(&list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "review", list.Items[0].Decision)

	archive := filepath.Join(dir, "export.zip")
	resp, err = c.Transaction.ExportTransaction(ctx, archive, client.ExportOptions{ExportType: "json"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.String("Url"))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "transactions.json", zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	exported, _ := io.ReadAll(rc)
	rc.Close()
	assert.Contains(t, string(exported), tx.TransactionID)

	_, err = c.Transaction.DeleteTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	_, err = c.Transaction.GetTransaction(ctx, tx.TransactionID)
	assert.EqualError(t, err, "api error 404: Transaction not found")
}

func TestClientScanWarnings(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()
	require.NoError(t, c.Scanner.SetProfile(profile.New("")))

	resp, err := c.Scanner.Scan(ctx, "https://images.test/fake-license.jpg", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "reject", resp.String("decision"))

	c.Scanner.RestrictCountry("US,CA")
	require.NoError(t, c.Scanner.VerifyUserInformation("OTHER123", "", "", "", "", ""))
	resp, err = c.Scanner.Scan(ctx, "https://images.test/license.jpg", "", "", "")
	require.NoError(t, err)

	var tx models.Transaction
	require.NoError(t, resp.Decode(&tx))
	assert.Equal(t, "review", tx.Decision)
	require.Len(t, tx.Warning, 1)
	assert.Equal(t, "UNMATCHED_DOCUMENT_NUMBER", tx.Warning[0].Code)
}

func TestClientQuickScanCache(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()

	resp, err := c.Scanner.QuickScan(ctx, "https://images.test/front.jpg", "", true)
	require.NoError(t, err)
	refs, _ := resp.Body["cacheReference"].(map[string]any)
	token, _ := refs["document"].(string)
	require.NotEmpty(t, token)

	require.NoError(t, c.Scanner.SetProfile(profile.New("")))
	_, err = c.Scanner.Scan(ctx, token, "", "", "")
	assert.NoError(t, err)

	_, err = c.Scanner.Scan(ctx, "ref:unknown", "", "", "")
	assert.EqualError(t, err, "api error 400: Cache reference not found or expired")
}

func TestClientBiometric(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()
	require.NoError(t, c.Biometric.SetProfile(profile.New(profile.SecurityLow)))

	resp, err := c.Biometric.VerifyFace(ctx, "https://images.test/ref.jpg", "https://images.test/selfie.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "accept", resp.String("decision"))

	resp, err = c.Biometric.VerifyLiveness(ctx, "https://images.test/fake-selfie.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "reject", resp.String("decision"))
}

func TestClientContract(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()

	resp, err := c.Contract.CreateTemplate(ctx, client.Template{
		Name:    "Agreement",
		Content: "<p>%{fullName} born %{dob}, agent %{agent}</p>",
	})
	require.NoError(t, err)
	var tpl models.ContractTemplate
	require.NoError(t, resp.Decode(&tpl))
	assert.Equal(t, "UTC", tpl.Timezone)
	assert.Equal(t, "Open Sans", tpl.Font)

	_, err = c.Contract.UpdateTemplate(ctx, tpl.TemplateID, client.Template{Name: "Agreement v2", Content: tpl.Content})
	require.NoError(t, err)
	resp, err = c.Contract.GetTemplate(ctx, tpl.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "Agreement v2", resp.String("name"))

	resp, err = c.Contract.ListTemplate(ctx, -1, 10, 0, "")
	require.NoError(t, err)
	var list models.ContractTemplateList
	require.NoError(t, resp.Decode(&list))
	assert.Equal(t, 1, list.Total)

	require.NoError(t, c.Scanner.SetProfile(profile.New("")))
	c.Scanner.SetContractOptions(tpl.TemplateID, "HTML", map[string]any{"agent": "Bob", "fullName": "ignored"})
	resp, err = c.Scanner.Scan(ctx, "https://images.test/front.jpg", "", "", "")
	require.NoError(t, err)
	var tx models.Transaction
	require.NoError(t, resp.Decode(&tx))
	require.Len(t, tx.OutputFile, 1)

	dst := filepath.Join(t.TempDir(), "contract.html")
	require.NoError(t, c.Transaction.SaveFile(ctx, tx.OutputFile[0].FileName, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>JANE DOE born 1990/04/20, agent Bob</p>", string(data))

	resp, err = c.Contract.Generate(ctx, tpl.TemplateID, "PDF", tx.TransactionID, map[string]any{"agent": "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.String("fileName"))

	_, err = c.Contract.DeleteTemplate(ctx, tpl.TemplateID)
	require.NoError(t, err)
	_, err = c.Contract.GetTemplate(ctx, tpl.TemplateID)
	assert.EqualError(t, err, "api error 404: Contract template not found")
}

func TestClientDocupass(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()

	resp, err := c.Docupass.CreateDocupass(ctx, client.DocupassOptions{
		Profile:    profile.SecurityHigh,
		Mode:       1,
		CustomData: "user-9",
	})
	require.NoError(t, err)
	var d models.Docupass
	require.NoError(t, resp.Decode(&d))
	assert.Equal(t, 1, d.Mode)
	assert.Contains(t, d.URL, "/verify/"+d.Reference)

	resp, err = c.Docupass.ListDocupass(ctx, -1, 10, 0)
	require.NoError(t, err)
	var list models.DocupassList
	require.NoError(t, resp.Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "user-9", list.Items[0].CustomData)

	_, err = c.Docupass.DeleteDocupass(ctx, d.Reference)
	require.NoError(t, err)
	_, err = c.Docupass.DeleteDocupass(ctx, d.Reference)
	assert.EqualError(t, err, "api error 404: Docupass reference not found")
}

func TestClientDecide(t *testing.T) {
	_, c := newSandboxClient(t, testKey)
	ctx := context.TODO()
	require.NoError(t, c.Scanner.SetProfile(profile.New("")))

	resp, err := c.Scanner.Scan(ctx, "https://images.test/front.jpg", "", "", "")
	require.NoError(t, err)
	id := resp.String("transactionId")

	e := policy.NewEngine(`
default decision := "reject"
decision := "review" if years_since(input.data.dob[0].value) >= 18
`)
	require.NoError(t, e.Compile(ctx))

	_, err = c.Transaction.Decide(ctx, id, e)
	require.NoError(t, err)

	resp, err = c.Transaction.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "review", resp.String("decision"))
}
