package chatapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	cerrors "github.com/ediscovery/chatbox/internal/errors"
)

// ReplyKind names one case of the Reply union.
type ReplyKind int

const (
	KindClarification ReplyKind = iota + 1
	KindReframe
	KindAnswer
	KindQueryResult
	KindPlainReply
)

func (k ReplyKind) String() string {
	switch k {
	case KindClarification:
		return "clarification"
	case KindReframe:
		return "reframe"
	case KindAnswer:
		return "answer"
	case KindQueryResult:
		return "query_result"
	case KindPlainReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Reply is a successfully classified response body. The concrete type is
// one of Clarification, Reframe, Answer, QueryResult or PlainReply.
type Reply interface {
	Kind() ReplyKind
	// Render returns the text shown as the assistant message.
	Render() string
}

// Ambiguity is one entity the backend could not resolve on its own.
type Ambiguity struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Clarification asks the user to pick between ambiguous entities.
type Clarification struct {
	Message   string
	Ambiguous []Ambiguity
}

func (Clarification) Kind() ReplyKind { return KindClarification }

// Render lists the message followed by one "name: a, b" line per entity.
func (c Clarification) Render() string {
	lines := make([]string, 0, len(c.Ambiguous)+1)
	if c.Message != "" {
		lines = append(lines, c.Message)
	}
	for _, a := range c.Ambiguous {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Name, strings.Join(a.Options, ", ")))
	}
	return strings.Join(lines, "\n")
}

// DefaultConfirmation is shown under a reframed question when the backend
// sends no confirmation prompt of its own.
const DefaultConfirmation = "Is this what you meant? Reply yes to continue."

// Reframe restates the question and waits for the user to confirm it.
type Reframe struct {
	Question     string
	Confirmation string
}

func (Reframe) Kind() ReplyKind { return KindReframe }

func (r Reframe) Render() string {
	confirm := r.Confirmation
	if confirm == "" {
		confirm = DefaultConfirmation
	}
	return r.Question + "\n" + confirm
}

// Answer is a plain natural-language answer.
type Answer struct {
	Text string
}

func (Answer) Kind() ReplyKind { return KindAnswer }

func (a Answer) Render() string { return a.Text }

// QueryResult carries the generated Cypher query and its raw results.
type QueryResult struct {
	Query   string
	Results json.RawMessage
}

func (QueryResult) Kind() ReplyKind { return KindQueryResult }

// QueryHeader and ResultsHeader delimit the sections of a rendered
// QueryResult.
const (
	QueryHeader   = "Cypher Query:"
	ResultsHeader = "Results:"
)

func (q QueryResult) Render() string {
	return fmt.Sprintf("%s\n%s\n\n%s\n%s", QueryHeader, q.Query, ResultsHeader, prettyJSON(q.Results))
}

// PlainReply is the single "reply" string of the earliest backends.
type PlainReply struct {
	Text string
}

func (PlainReply) Kind() ReplyKind { return KindPlainReply }

func (p PlainReply) Render() string { return p.Text }

// wireReply is the union of every field any backend version sends.
type wireReply struct {
	ClarifyPerson       bool            `json:"clarify_person"`
	AmbiguousNames      []Ambiguity     `json:"ambiguous_names"`
	Message             string          `json:"message"`
	ReframedQuestion    string          `json:"reframed_question"`
	TerminationStatus   json.RawMessage `json:"termination_status"`
	ConfirmationMessage string          `json:"confirmation_message"`
	NaturalResponse     *string         `json:"natural_response"`
	CypherQuery         *string         `json:"cypher_query"`
	Results             json.RawMessage `json:"results"`
	Reply               *string         `json:"reply"`
	Error               string          `json:"error"`
}

// Classify decodes a response body and decides its reply kind. The order
// is clarification, then reframed question, then natural answer, then the
// legacy cypher_query and reply shapes.
func Classify(body []byte) (Reply, error) {
	var w wireReply
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, cerrors.MalformedReply("response is not a JSON object", err)
	}

	switch {
	case w.ClarifyPerson:
		return Clarification{Message: w.Message, Ambiguous: w.AmbiguousNames}, nil
	case w.ReframedQuestion != "" && notTerminated(w.TerminationStatus):
		return Reframe{Question: w.ReframedQuestion, Confirmation: w.ConfirmationMessage}, nil
	case w.NaturalResponse != nil:
		return Answer{Text: *w.NaturalResponse}, nil
	case w.CypherQuery != nil:
		return QueryResult{Query: *w.CypherQuery, Results: w.Results}, nil
	case w.Reply != nil:
		return PlainReply{Text: *w.Reply}, nil
	case w.Error != "":
		return nil, cerrors.MalformedReply("backend error: "+w.Error, nil)
	default:
		return nil, cerrors.MalformedReply("response has no known reply field", nil)
	}
}

var pendingStatuses = map[string]bool{
	"false":          true,
	"not_terminated": true,
	"pending":        true,
	"in_progress":    true,
	"continue":       true,
}

// notTerminated reports whether termination_status explicitly says the
// conversation turn is still open. A missing status does not count.
func notTerminated(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch s := v.(type) {
	case bool:
		return !s
	case string:
		return pendingStatuses[strings.ToLower(strings.TrimSpace(s))]
	default:
		return false
	}
}

func prettyJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
