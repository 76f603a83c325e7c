package twilio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/xavierca1/leaddialer/internal/entity"
)

type MockCallCreator struct {
	mock.Mock
}

func (m *MockCallCreator) CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twilioApi.ApiV2010Call), args.Error(1)
}

func callWithSid(sid string) *twilioApi.ApiV2010Call {
	return &twilioApi.ApiV2010Call{Sid: &sid}
}

func TestPlaceCallSuccess(t *testing.T) {
	api := new(MockCallCreator)
	api.On("CreateCall", mock.MatchedBy(func(p *twilioApi.CreateCallParams) bool {
		return *p.To == "+15551234567" &&
			*p.From == "+15550000000" &&
			*p.Url == "https://dialer.example.com/api/calls/twiml"
	})).Return(callWithSid("CA123"), nil)

	c := newClient(api, "+15550000000", "hi", nil)

	sid, err := c.PlaceCall(context.Background(), "+15551234567", "https://dialer.example.com/api/calls/twiml")
	require.NoError(t, err)
	assert.Equal(t, "CA123", sid)
	api.AssertExpectations(t)
}

func TestPlaceCallProviderError(t *testing.T) {
	api := new(MockCallCreator)
	api.On("CreateCall", mock.Anything).Return(nil, errors.New("Status: 400 - invalid 'To' number"))

	c := newClient(api, "+15550000000", "hi", nil)

	_, err := c.PlaceCall(context.Background(), "not-a-number", "https://x/api/calls/twiml")
	require.Error(t, err)
	assert.True(t, entity.IsUpstream(err))
}

func TestPlaceCallWithoutSid(t *testing.T) {
	api := new(MockCallCreator)
	api.On("CreateCall", mock.Anything).Return(&twilioApi.ApiV2010Call{}, nil)

	c := newClient(api, "+15550000000", "hi", nil)

	_, err := c.PlaceCall(context.Background(), "+15551234567", "https://x/api/calls/twiml")
	assert.True(t, entity.IsUpstream(err))
}

func TestPlaceCallSkipsProviderWhenCancelledOrNoPhone(t *testing.T) {
	api := new(MockCallCreator)
	c := newClient(api, "+15550000000", "hi", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.PlaceCall(ctx, "+15551234567", "https://x/api/calls/twiml")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.PlaceCall(context.Background(), "", "https://x/api/calls/twiml")
	assert.True(t, entity.IsUpstream(err))

	api.AssertNotCalled(t, "CreateCall", mock.Anything)
}

func TestInstructions(t *testing.T) {
	c := newClient(new(MockCallCreator), "+15550000000", "Hello from the sales team", nil)

	doc, err := c.Instructions()
	require.NoError(t, err)
	assert.Contains(t, doc, "<Response>")
	assert.Contains(t, doc, "<Say>Hello from the sales team</Say>")
}

func TestConfigured(t *testing.T) {
	assert.True(t, newClient(new(MockCallCreator), "+15550000000", "", nil).Configured())
	assert.False(t, newClient(new(MockCallCreator), "", "", nil).Configured())
}
