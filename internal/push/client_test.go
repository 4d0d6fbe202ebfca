package push

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddharth-2510/cofman/internal/configops"
	"github.com/siddharth-2510/cofman/internal/configtree"
)

func TestParseEnvURLs(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want map[string]string
	}{
		{
			name: "nhiều env",
			spec: "uat=https://uat.example.com,prod=https://prod.example.com",
			want: map[string]string{"uat": "https://uat.example.com", "prod": "https://prod.example.com"},
		},
		{
			name: "trim khoảng trắng và slash cuối, env về lowercase",
			spec: " UAT = https://uat.example.com/ , demo=https://demo.example.com",
			want: map[string]string{"uat": "https://uat.example.com", "demo": "https://demo.example.com"},
		},
		{
			name: "bỏ entry hỏng",
			spec: "uat=https://uat.example.com,khong-co-dau-bang,=https://x,prod=",
			want: map[string]string{"uat": "https://uat.example.com"},
		},
		{
			name: "chuỗi rỗng",
			spec: "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEnvURLs(tt.spec))
		})
	}
}

// newTestClient tạo client trỏ vào httptest server, trả kèm private key
// để server test giải mã được credential
func newTestClient(t *testing.T, serverURL string) (*Client, *rsa.PrivateKey) {
	t.Helper()
	private, b64, _ := newTestKey(t)
	client, err := NewClient("deployer", "pw", b64, "uat="+serverURL, 5*time.Second)
	require.NoError(t, err)
	require.True(t, client.Enabled())
	return client, private
}

func TestClientSignin(t *testing.T) {
	var received map[string]string
	private := (*rsa.PrivateKey)(nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signin", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		// Password phải giải mã được bằng private key và có dạng timestamp:password
		ciphertext, err := base64.StdEncoding.DecodeString(received["password"])
		require.NoError(t, err)
		plaintext, err := rsa.DecryptPKCS1v15(nil, private, ciphertext)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(plaintext), ":pw"))

		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer server.Close()

	client, key := newTestClient(t, server.URL)
	private = key

	token, err := client.Signin(context.Background(), "retail", "uat")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, "deployer", received["loginId"])
	assert.Equal(t, "retailuat", received["lob"])
}

func TestClientSigninErrors(t *testing.T) {
	t.Run("chưa cấu hình", func(t *testing.T) {
		client, err := NewClient("", "", "", "", 5*time.Second)
		require.NoError(t, err)
		require.False(t, client.Enabled())

		_, err = client.Signin(context.Background(), "retail", "uat")
		assert.Error(t, err)
	})

	t.Run("env không có URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client, _ := newTestClient(t, server.URL)
		_, err := client.Signin(context.Background(), "retail", "prod")
		assert.Error(t, err)
	})

	t.Run("signin bị từ chối", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client, _ := newTestClient(t, server.URL)
		_, err := client.Signin(context.Background(), "retail", "uat")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("response thiếu token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}))
		defer server.Close()

		client, _ := newTestClient(t, server.URL)
		_, err := client.Signin(context.Background(), "retail", "uat")
		assert.Error(t, err)
	})
}

func TestClientPushConfigs(t *testing.T) {
	var receivedBatch []configops.DomainValues
	var lobHeader, authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/metadata", r.URL.Path)
		lobHeader = r.Header.Get("lob")
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedBatch))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	batch := []configops.DomainValues{{
		DomainName:   "PaymentConfig",
		DomainType:   "limits",
		DomainValues: []any{map[string]any{"name": "daily", "limit": float64(100)}},
	}}

	err := client.PushConfigs(context.Background(), "retail", "uat", "tok-123", batch)
	require.NoError(t, err)
	assert.Equal(t, "retailuat", lobHeader)
	assert.Equal(t, "tok-123", authHeader)
	require.Len(t, receivedBatch, 1)
	assert.Equal(t, "PaymentConfig", receivedBatch[0].DomainName)
	assert.Equal(t, "limits", receivedBatch[0].DomainType)
}

// PushLob end-to-end: dựng cây config thật trên đĩa, push toàn bộ LOB
// sang một server giả — mỗi domain một request metadata, signin chỉ một lần
func TestServicePushLob(t *testing.T) {
	signinCount := 0
	pushed := make(map[string][]any)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/signin":
			signinCount++
			json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
		case "/metadata":
			var batch []configops.DomainValues
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			for _, entry := range batch {
				pushed[entry.DomainName+":"+entry.DomainType] = entry.DomainValues
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("path không mong đợi: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	engine := configtree.NewEngine(t.TempDir(), configtree.StaticEnvSource{})
	_, err := engine.Deconstruct("default", "PaymentConfig", "limits",
		[]any{map[string]any{"name": "daily", "max": float64(100)}}, "uat")
	require.NoError(t, err)
	_, err = engine.Deconstruct("default", "FeatureFlags", "toggles",
		[]any{map[string]any{"name": "newUI", "enabled": true}}, "uat")
	require.NoError(t, err)

	client, _ := newTestClient(t, server.URL)
	service := NewService(engine, client)

	results, err := service.PushLob(context.Background(), "default", "uat")
	require.NoError(t, err)
	assert.Equal(t, 1, signinCount)
	assert.Equal(t, map[string]bool{
		"PaymentConfig:limits": true,
		"FeatureFlags:toggles": true,
	}, results)
	assert.Len(t, pushed["PaymentConfig:limits"], 1)
}

func TestServicePushDomain(t *testing.T) {
	var batch []configops.DomainValues
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/signin":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
		case "/metadata":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	engine := configtree.NewEngine(t.TempDir(), configtree.StaticEnvSource{})
	_, err := engine.Deconstruct("default", "PaymentConfig", "limits",
		[]any{map[string]any{"name": "daily", "max": float64(100)}}, "uat")
	require.NoError(t, err)

	client, _ := newTestClient(t, server.URL)
	service := NewService(engine, client)

	err = service.PushDomain(context.Background(), "default", "PaymentConfig", "limits", "uat")
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "PaymentConfig", batch[0].DomainName)

	// Domain chưa tồn tại: lỗi trước khi chạm mạng
	err = service.PushDomain(context.Background(), "default", "Missing", "x", "uat")
	assert.Error(t, err)
}
