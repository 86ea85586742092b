package messaging

import (
	"encoding/xml"
	"fmt"
)

// TwiML rendering for the voice flow. Two shapes cover every reply: speak and
// keep listening, or speak and hang up.

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr"`
	Language string   `xml:"language,attr"`
	Text     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Language      string   `xml:"language,attr"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

func (r twimlResponse) render() string {
	body, err := xml.Marshal(r)
	if err != nil {
		// The verb structs cannot fail to marshal; keep the call alive anyway.
		return xmlHeader + "<Response></Response>"
	}
	return xmlHeader + string(body)
}

func say(text string) twimlSay {
	return twimlSay{Voice: "alice", Language: "en-US", Text: text}
}

// GatherSpeechTwiML speaks text, then listens for the caller's next utterance
// and posts the speech recognition result to actionPath.
func GatherSpeechTwiML(text, actionPath string) string {
	return twimlResponse{Verbs: []any{
		say(text),
		twimlGather{
			Input:         "speech",
			Action:        actionPath,
			Method:        "POST",
			SpeechTimeout: "auto",
			Language:      "en-US",
		},
	}}.render()
}

// HangupTwiML speaks text followed by a farewell, then ends the call.
func HangupTwiML(text, businessName string) string {
	return twimlResponse{Verbs: []any{
		say(text),
		say(fmt.Sprintf("Thank you for choosing %s. Goodbye!", businessName)),
		twimlHangup{},
	}}.render()
}

// EmptyTwiML acknowledges a webhook with no spoken content.
func EmptyTwiML() string {
	return xmlHeader + "<Response></Response>"
}
