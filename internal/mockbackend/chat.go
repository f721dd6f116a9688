package mockbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/session"
)

// MissingInputError is the body of the 400 response.
const MissingInputError = "Missing 'user_input' parameter"

// ConfirmationPrompt follows every reframed question.
const ConfirmationPrompt = "Reply yes to run this query, or rephrase your question."

// reframePrefix starts every reframed question so a later "yes" can find it.
const reframePrefix = "Did you mean: "

// people maps a first name to the custodians it could refer to.
var people = map[string][]string{
	"john":  {"john.arnold@enron.com", "john.lavorato@enron.com"},
	"mike":  {"mike.grigsby@enron.com", "mike.mcconnell@enron.com"},
	"sally": {"sally.beck@enron.com"},
}

var (
	wordPattern  = regexp.MustCompile(`[a-z]+`)
	emailPattern = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
)

var affirmations = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "correct": true, "ok": true,
}

// chatRequest accepts every request format the client can send.
type chatRequest struct {
	UserInput *string           `json:"user_input"`
	Message   *string           `json:"message"`
	History   []session.Message `json:"history"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.UserInput == nil && req.Message == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingInputError})
		return
	}

	// The earliest backends took {message} and answered {reply}
	if req.UserInput == nil {
		s.log.Info("received message", "message", *req.Message)
		c.JSON(http.StatusOK, gin.H{"reply": naturalAnswer(*req.Message)})
		return
	}

	input := *req.UserInput
	s.log.Info("received user query", "input", input, "history", len(req.History))
	c.JSON(http.StatusOK, respond(input, req.History))
}

// respond picks the reply shape for input given the prior conversation.
func respond(input string, history []session.Message) gin.H {
	normalized := strings.ToLower(strings.TrimSpace(input))

	if affirmations[strings.Trim(normalized, ".! ")] {
		if question, ok := pendingReframe(history); ok {
			return queryResult(question)
		}
	}

	for _, word := range wordPattern.FindAllString(normalized, -1) {
		if options, ok := people[word]; ok && len(options) > 1 && !emailPattern.MatchString(normalized) {
			return gin.H{
				"clarify_person": true,
				"message":        fmt.Sprintf("I found more than one person named %s. Which one did you mean?", titleCase(word)),
				"ambiguous_names": []chatapi.Ambiguity{
					{Name: titleCase(word), Options: options},
				},
			}
		}
	}

	if strings.HasPrefix(normalized, "how many") || strings.HasPrefix(normalized, "count") {
		return gin.H{
			"reframed_question":    reframePrefix + reframe(normalized),
			"termination_status":   false,
			"confirmation_message": ConfirmationPrompt,
		}
	}

	return gin.H{"natural_response": naturalAnswer(input)}
}

// pendingReframe returns the question of the latest assistant reframe when
// it is the last assistant message in history.
func pendingReframe(history []session.Message) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != session.RoleAssistant {
			continue
		}
		if !strings.HasPrefix(msg.Content, reframePrefix) {
			return "", false
		}
		question, _, _ := strings.Cut(strings.TrimPrefix(msg.Content, reframePrefix), "\n")
		return question, true
	}
	return "", false
}

// reframe restates a counting question as the query it will run.
func reframe(question string) string {
	if addr := emailPattern.FindString(question); addr != "" {
		switch {
		case strings.Contains(question, "receive"):
			return fmt.Sprintf("count the responsive emails received by %s?", addr)
		case strings.Contains(question, "bcc"):
			return fmt.Sprintf("count the responsive emails %s was BCC-ed on?", addr)
		default:
			return fmt.Sprintf("count the responsive emails sent by %s?", addr)
		}
	}
	return "count all responsive emails?"
}

// queryResult answers a confirmed question with a query and its results.
func queryResult(question string) gin.H {
	query := "MATCH (email:Email)-[:RESPONSIVE]->(:Topic {name: 'Topic 303'})\nRETURN count(email) AS responsive_email_count;"
	column := "responsive_email_count"
	count := 303

	if addr := emailPattern.FindString(question); addr != "" {
		rel, role := "SEND", "sender"
		switch {
		case strings.Contains(question, "received"):
			rel, role = "RECEIVE", "recipient"
		case strings.Contains(question, "bcc"), strings.Contains(question, "BCC"):
			rel, role = "Bcc", "bccRecipient"
		}
		query = fmt.Sprintf("MATCH (%s:Person {id: '%s'})-[:%s]->(email:Email)-[:RESPONSIVE]->(:Topic {name: 'Topic 303'})\nRETURN count(email) AS %s;",
			role, addr, rel, column)
		count = 10 + len(addr)
	}

	results, _ := json.Marshal([]map[string]int{{column: count}})
	return gin.H{
		"cypher_query": query,
		"results":      json.RawMessage(results),
	}
}

func naturalAnswer(input string) string {
	return fmt.Sprintf("The mock backend has no data about %q. Ask \"how many responsive emails did someone@enron.com send?\" to try a query.", strings.TrimSpace(input))
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
