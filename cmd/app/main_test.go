package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/fakturera/internal/auth"
	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/product"
	"github.com/wichananm65/fakturera/internal/server"
	"github.com/wichananm65/fakturera/internal/terms"
)

// startAPI serves an in-memory API on a loopback port and points the client
// commands at it.
func startAPI(t *testing.T) string {
	t.Helper()
	users := auth.NewCredentials().WithCost(bcrypt.MinCost)
	require.NoError(t, users.Add(1, "user", "user123"))
	stock := int64(40)

	api, err := server.NewApp(server.Deps{
		Port:   "3000",
		Log:    zap.NewNop(),
		Issuer: auth.NewIssuer("cli-test-secret", time.Hour),
		Users:  users,
		Products: product.NewInMemoryRepository([]product.Record{
			{ID: 1, ArticleNo: "ART-010", NameEN: "Widget", NameSV: "Pryl", Price: decimal.NewFromInt(10), Unit: "pcs", InStock: &stock},
			{ID: 2, ArticleNo: "ART-1", NameEN: "Consulting", NameSV: "Konsultation", Price: decimal.NewFromInt(950), Unit: "hour"},
			{ID: 3, ArticleNo: "ART-002", NameEN: "Bolt", NameSV: "Bult", Price: decimal.RequireFromString("1.50"), Unit: "pcs"},
		}),
		Terms: terms.NewInMemoryRepository(
			terms.Terms{LanguageCode: language.EN, Content: "Be nice."},
			terms.Terms{LanguageCode: language.SV, Content: "Var snäll."},
		),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, api, ln, zap.NewNop()) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	base := "http://" + ln.Addr().String()
	t.Setenv("API_URL", base)
	t.Setenv("SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("LOG_LEVEL", "error")
	return base
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClientCommandsNeedLogin(t *testing.T) {
	startAPI(t)

	_, err := run(t, "products")
	assert.ErrorIs(t, err, errLoginRequired)

	_, err = run(t, "login", "-u", "user", "-p", "wrong")
	assert.EqualError(t, err, "invalid username or password")

	_, err = run(t, "login", "-u", "user")
	assert.Error(t, err)
}

func TestLoginListAndLogout(t *testing.T) {
	startAPI(t)

	out, err := run(t, "login", "-u", "user", "-p", "user123")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as user\n", out)

	out, err = run(t, "products")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Price list (English), article_no asc\n"), out)
	assert.Contains(t, out, "Article no")
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "N/A")
	assert.Less(t, strings.Index(out, "ART-1 "), strings.Index(out, "ART-002"))

	out, err = run(t, "products", "--lang", "sv", "--search", "BUL", "--sort", "name", "--order", "DESC")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Prislista (Svenska), name desc\n"), out)
	assert.Contains(t, out, "Artikelnr")
	assert.Contains(t, out, "Bult")
	assert.NotContains(t, out, "Pryl")

	out, err = run(t, "products", "--article", "nothing")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\nNo products\n"), out)

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	_, err = run(t, "products")
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestEdit(t *testing.T) {
	startAPI(t)
	_, err := run(t, "login", "-u", "user", "-p", "user123")
	require.NoError(t, err)

	out, err := run(t, "edit", "3", "price", "2,5")
	require.NoError(t, err)
	assert.Contains(t, out, "2.5")

	_, err = run(t, "edit", "3", "price", "abc")
	assert.EqualError(t, err, "Enter a valid number")

	_, err = run(t, "edit", "3", "in_stock", "x", "--lang", "sv")
	assert.EqualError(t, err, "Ange ett giltigt tal")

	_, err = run(t, "edit", "1", "name", "Ny pryl", "--lang", "sv")
	require.NoError(t, err)
	out, err = run(t, "products", "--lang", "sv")
	require.NoError(t, err)
	assert.Contains(t, out, "Ny pryl")
	out, err = run(t, "products")
	require.NoError(t, err)
	assert.Contains(t, out, "Widget")

	_, err = run(t, "edit", "99", "price", "1")
	assert.EqualError(t, err, "product with id 99 not found")

	_, err = run(t, "edit", "1", "article_no", "X")
	assert.ErrorContains(t, err, "unknown field")

	_, err = run(t, "edit", "zero", "price", "1")
	assert.ErrorContains(t, err, "invalid product id")
}

func TestRejectedSessionIsCleared(t *testing.T) {
	startAPI(t)
	path := os.Getenv("SESSION_FILE")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"garbage"}`), 0o600))

	_, err := run(t, "products")
	assert.ErrorIs(t, err, errLoginRequired)

	b, err := os.ReadFile(path)
	if err == nil {
		assert.NotContains(t, string(b), "garbage")
	}
}

func TestTerms(t *testing.T) {
	startAPI(t)

	out, err := run(t, "terms", "--lang", "sv")
	require.NoError(t, err)
	assert.Equal(t, "Villkor\n\nVar snäll.\n", out)

	_, err = run(t, "terms", "--lang", "fr")
	assert.Error(t, err)
}

func TestLangFlagListsLanguages(t *testing.T) {
	assert.Equal(t, "language code: sv (Svenska), en (English)", langUsage())
}
