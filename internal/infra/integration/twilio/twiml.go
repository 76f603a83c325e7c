package twilio

import "github.com/twilio/twilio-go/twiml"

// Instructions renders the TwiML document served to Twilio when the callee answers.
func (c *Client) Instructions() (string, error) {
	return twiml.Voice([]twiml.Element{
		twiml.VoiceSay{Message: c.greeting},
	})
}
