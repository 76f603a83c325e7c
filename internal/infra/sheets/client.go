package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/logger"
)

const serviceName = "google-sheets"

// Client talks to one spreadsheet document through a service account.
// It is built once at startup and shared by every request.
type Client struct {
	svc     *gsheets.Service
	sheetID string
	logger  *zap.Logger
}

func NewClient(ctx context.Context, sheetID, serviceAccountEmail, privateKey string, log *zap.Logger) (*Client, error) {
	if sheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}

	conf := &jwt.Config{
		Email:      serviceAccountEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	httpClient := conf.Client(ctx)
	httpClient.Timeout = 15 * time.Second

	return NewClientWithHTTP(ctx, sheetID, httpClient, log)
}

// NewClientWithHTTP lets callers supply their own authenticated transport.
func NewClientWithHTTP(ctx context.Context, sheetID string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &Client{
		svc:     svc,
		sheetID: sheetID,
		logger:  logger.OrNop(log).Named("sheets"),
	}, nil
}

// ReadTable fetches the metadata and every row of the first tab.
func (c *Client) ReadTable(ctx context.Context) (*Table, error) {
	title, err := c.firstSheetTitle(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.sheetID, quoteSheet(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, entity.NewUpstreamError(serviceName, "read rows", err)
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		values[i] = make([]string, len(row))
		for j, cell := range row {
			values[i][j] = fmt.Sprint(cell)
		}
	}

	c.logger.Debug("sheet loaded", zap.String("sheet", title), zap.Int("rows", len(values)))
	return NewTable(title, values), nil
}

// WriteRow overwrites one sheet row (1-based, header is row 1) starting at column A.
// Values are parsed as if typed in, so untouched numeric and date cells keep their type.
func (c *Client) WriteRow(ctx context.Context, sheet string, rowNumber int, values []string) error {
	if len(values) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), rowNumber, columnName(len(values)), rowNumber)

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	_, err := c.svc.Spreadsheets.Values.Update(c.sheetID, rng, &gsheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return entity.NewUpstreamError(serviceName, "write row", err)
	}

	c.logger.Debug("sheet row saved", zap.String("range", rng))
	return nil
}

// Ping checks that the document is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.firstSheetTitle(ctx)
	return err
}

func (c *Client) firstSheetTitle(ctx context.Context) (string, error) {
	doc, err := c.svc.Spreadsheets.Get(c.sheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", entity.NewUpstreamError(serviceName, "load info", err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return "", entity.NewUpstreamError(serviceName, "load info", errors.New("spreadsheet has no sheets"))
	}
	return doc.Sheets[0].Properties.Title, nil
}
