package twilio

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/logger"
)

const serviceName = "twilio"

// callCreator is the slice of the Twilio REST API this adapter needs.
type callCreator interface {
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

type Client struct {
	api      callCreator
	from     string
	greeting string
	logger   *zap.Logger
}

func NewClient(accountSID, authToken, fromNumber, greeting string, log *zap.Logger) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newClient(rest.Api, fromNumber, greeting, log)
}

func newClient(api callCreator, fromNumber, greeting string, log *zap.Logger) *Client {
	return &Client{
		api:      api,
		from:     fromNumber,
		greeting: greeting,
		logger:   logger.OrNop(log).Named("twilio"),
	}
}

// PlaceCall asks Twilio to dial toNumber from the configured number; Twilio
// fetches call instructions from callbackURL. It returns the call SID and does
// not wait for the call to connect.
func (c *Client) PlaceCall(ctx context.Context, toNumber, callbackURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if toNumber == "" {
		return "", entity.NewUpstreamError(serviceName, "create call", errors.New("lead has no phone number"))
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(toNumber)
	params.SetFrom(c.from)
	params.SetUrl(callbackURL)

	call, err := c.api.CreateCall(params)
	if err != nil {
		c.logger.Error("create call failed", zap.String("to", toNumber), zap.Error(err))
		return "", entity.NewUpstreamError(serviceName, "create call", err)
	}
	if call == nil || call.Sid == nil {
		return "", entity.NewUpstreamError(serviceName, "create call", fmt.Errorf("response without call sid"))
	}

	c.logger.Info("call placed", zap.String("call_sid", *call.Sid), zap.String("to", toNumber))
	return *call.Sid, nil
}

// Configured reports whether the account credentials and caller id are set.
func (c *Client) Configured() bool {
	return c.api != nil && c.from != ""
}
