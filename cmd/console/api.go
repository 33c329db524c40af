package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listCatalogs(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/catalogs")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var items []struct {
		Name     string `json:"name"`
		FileName string `json:"file_name"`
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, nil, err
	}

	catalogMap := make(map[string]string, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		catalogMap[item.Name] = item.FileName
	}
	sort.Strings(names)
	return names, catalogMap, nil
}

func getCatalog(client *http.Client, baseURL string, catalogFile string) (*catalog.Catalog, error) {
	resp, err := client.Get(baseURL + "/v1/catalogs/" + catalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body, "failed to get catalog")
	}

	var cat catalog.Catalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return &cat, nil
}

// CreateSessionRequest matches the API request structure
type CreateSessionRequest struct {
	Catalog string `json:"catalog"`
}

func createSession(client *http.Client, baseURL string, catalogFile string) (*sim.GameState, error) {
	jsonData, err := json.Marshal(CreateSessionRequest{Catalog: catalogFile})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/sessions",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp.StatusCode, body, "failed to create session")
	}

	var gs sim.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &gs, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*sim.GameState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body, "failed to get session")
	}

	var gs sim.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &gs, nil
}

// postAction sends one session action and decodes the updated game state.
func postAction(client *http.Client, baseURL string, sessionID uuid.UUID, action string, reqBody any) (*sim.GameState, error) {
	var payload io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewBuffer(jsonData)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/%s", baseURL, sessionID, action),
		"application/json",
		payload,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body, "action "+action+" failed")
	}

	var gs sim.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &gs, nil
}

func makeDecision(client *http.Client, baseURL string, sessionID uuid.UUID, decisionID, optionID string) (*sim.GameState, error) {
	return postAction(client, baseURL, sessionID, "decision", map[string]string{
		"decision_id": decisionID,
		"option_id":   optionID,
	})
}

func advanceTime(client *http.Client, baseURL string, sessionID uuid.UUID, months int) (*sim.GameState, error) {
	return postAction(client, baseURL, sessionID, "advance", map[string]int{"months": months})
}

func resetSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*sim.GameState, error) {
	return postAction(client, baseURL, sessionID, "reset", nil)
}

func completeLesson(client *http.Client, baseURL string, sessionID uuid.UUID, lessonID string) (*sim.GameState, error) {
	return postAction(client, baseURL, sessionID, "lessons", map[string]string{"lesson_id": lessonID})
}

// sampleResult mirrors the sample-decision and trigger-crisis responses.
type sampleResult struct {
	Sampled   bool           `json:"sampled"`
	Triggered bool           `json:"triggered"`
	GameState *sim.GameState `json:"game_state"`
}

func postProbe(client *http.Client, baseURL string, sessionID uuid.UUID, action string) (*sampleResult, error) {
	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/%s", baseURL, sessionID, action),
		"application/json",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body, "action "+action+" failed")
	}

	var result sampleResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func sampleDecision(client *http.Client, baseURL string, sessionID uuid.UUID) (*sampleResult, error) {
	return postProbe(client, baseURL, sessionID, "sample-decision")
}

func triggerCrisis(client *http.Client, baseURL string, sessionID uuid.UUID) (*sampleResult, error) {
	return postProbe(client, baseURL, sessionID, "trigger-crisis")
}

func decodeError(status int, body []byte, context string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", context, errorResp.Error)
}
