package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	cfg := config.Default()
	cfg.Camera.Mock = true
	cfg.Camera.Width, cfg.Camera.Height = 160, 120
	cfg.Hooks.Dir = filepath.Join(tmpDir, "plugins")
	cfg.Server.StaticDir = ""

	application := app.New(cfg, s)
	mockDetector := detector.NewMockDetector()
	application.SetDetector(mockDetector)

	ts := httptest.NewServer(server.New(application.ServerConfig()))
	defer ts.Close()
	client := ts.Client()

	t.Run("ClassifyOverHTTP", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/api/classify", map[string]any{
			"hands": []detector.HandLandmarks{detector.PointingLandmarks()},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var body struct {
			Results []gesture.Result `json:"results"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if len(body.Results) != 1 || body.Results[0].Label != gesture.LabelOne {
			t.Errorf("unexpected results %+v", body.Results)
		}
	})

	t.Run("StoreSamplesAndVerify", func(t *testing.T) {
		samples := map[string]detector.HandLandmarks{
			gesture.LabelZero: detector.FistLandmarks(),
			gesture.LabelFive: detector.OpenPalmLandmarks(),
			gesture.LabelOne:  detector.PointingLandmarks(),
		}
		for label, h := range samples {
			resp := postJSON(t, client, ts.URL+"/api/samples", map[string]any{"label": label, "hand": h})
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("create sample %q: status = %d", label, resp.StatusCode)
			}
		}

		resp := postJSON(t, client, ts.URL+"/api/samples/verify", nil)
		var body struct {
			Reports []gesture.Report `json:"reports"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if len(body.Reports) != 2 || body.Reports[0].Accuracy != 1 {
			t.Errorf("expected a perfect best report, got %+v", body.Reports)
		}
	})

	t.Run("BindingRequiresKnownHook", func(t *testing.T) {
		resp := postJSON(t, client, ts.URL+"/api/bindings", map[string]any{
			"label": gesture.LabelFive, "plugin_name": "absent", "action_name": "run",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("LiveFrameReachesSubscribersAndHistory", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(2 * time.Second)
		for application.Hub().Clients() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("subscriber never registered")
			}
			time.Sleep(5 * time.Millisecond)
		}

		frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
		defer frame.Close()
		mockDetector.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
		if _, err := application.ProcessFrame(context.Background(), &frame, time.Now()); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg app.Frame
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(msg.Results) != 1 || msg.Results[0].Label != gesture.LabelZero {
			t.Errorf("unexpected broadcast %+v", msg)
		}

		resp, err := client.Get(ts.URL + "/api/detections?label=0")
		if err != nil {
			t.Fatalf("GET detections: %v", err)
		}
		defer resp.Body.Close()
		var body struct {
			Detections []store.Detection `json:"detections"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if len(body.Detections) != 1 || body.Detections[0].Curls != "TTTTT" {
			t.Errorf("unexpected history %+v", body.Detections)
		}
	})

	t.Run("DisableOverHTTP", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/enabled", strings.NewReader(`{"enabled":false}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT enabled: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if application.IsEnabled() {
			t.Error("expected recognition to be disabled")
		}
		if s.Settings().GetBool(store.SettingEnabled, true) {
			t.Error("expected disabled state to be persisted")
		}
	})
}
