package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

// Smoke test against a running server: starts an interview, answers until
// the terminal turn, then requests an ad hoc diagnosis.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Starting Interview...")
	body, ok := sendRequest("POST", "/interviews", map[string]interface{}{
		"symptoms": []string{"fever", "cough"},
	})
	if !ok {
		fmt.Println("FAILED: Start interview")
		os.Exit(1)
	}

	var start struct {
		SessionID string `json:"session_id"`
		Question  struct {
			Terminal bool `json:"terminal"`
		} `json:"question"`
	}
	if err := json.Unmarshal(body, &start); err != nil || start.SessionID == "" {
		fmt.Println("FAILED: Start interview returned no session id")
		os.Exit(1)
	}
	fmt.Println("PASSED: Start interview")

	fmt.Println("2. Answering Follow-ups...")
	terminal := start.Question.Terminal
	for turns := 0; !terminal && turns < 25; turns++ {
		body, ok = sendRequest("POST", "/interviews/"+start.SessionID+"/answer", map[string]string{
			"answer": "yes",
		})
		if !ok {
			fmt.Println("FAILED: Answer follow-up")
			os.Exit(1)
		}

		var resp struct {
			Question struct {
				Terminal bool `json:"terminal"`
			} `json:"question"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			fmt.Println("FAILED: Malformed answer response")
			os.Exit(1)
		}
		terminal = resp.Question.Terminal
	}
	if !terminal {
		fmt.Println("FAILED: Interview never terminated")
		os.Exit(1)
	}
	fmt.Println("PASSED: Interview loop")

	fmt.Println("3. Ad hoc Diagnosis...")
	_, ok = sendRequest("POST", "/diagnose", map[string]interface{}{
		"symptoms": []string{"fever", "cough", "fatigue"},
	})
	if !ok {
		fmt.Println("FAILED: Diagnose")
		os.Exit(1)
	}
	fmt.Println("PASSED: Diagnose")
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
