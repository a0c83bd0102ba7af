package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cjk-extractor/internal/keys"
	"cjk-extractor/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"SCAN_EXCLUDE_DIRS", "SCAN_INCLUDE_COMMENTS", "SCAN_FILE_EXTENSIONS", "WORKER_COUNT",
	"TRANSLATE_FILE", "CONST_KEY_FILE", "GENERATE_CONST_KEY_FILE", "KEY_NAMESPACE",
}

// project creates a temporary project directory, makes it the working
// directory and writes files into it.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(root)
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestScan_JSON(t *testing.T) {
	root := project(t, map[string]string{
		"lib/home.dart":     "Text('首页');\n// 注释\n",
		"build/gen.dart":    "Text('生成');\n",
		"lib/settings.dart": "final x = 1;\n",
	})

	out, err := run(t, "scan", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Files []parser.FileInfo `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 1)
	assert.Equal(t, filepath.Join(root, "lib", "home.dart"), doc.Files[0].FilePath)
	require.Len(t, doc.Files[0].Matches, 1)
	assert.Equal(t, "首页'", doc.Files[0].Matches[0].Text)
}

func TestScan_Flags(t *testing.T) {
	project(t, map[string]string{
		"lib/home.dart":  "// 注释\n",
		"build/gen.dart": "Text('生成');\n",
		"notes.txt":      "笔记\n",
	})

	out, err := run(t, "scan", "--format", "tsv", "--include-comments", "--exclude", "node_modules", "--ext", ".dart,.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "lib/home.dart\t1\t4\t注释")
	assert.Contains(t, out, "build/gen.dart\t1\t7\t生成'")
	assert.Contains(t, out, "notes.txt\t1\t1\t笔记")
}

func TestScan_InvalidFormat(t *testing.T) {
	project(t, nil)
	_, err := run(t, "scan", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestCheck(t *testing.T) {
	project(t, map[string]string{"a.dart": "Text(\"你好\");\n"})

	out, err := run(t, "check")
	assert.ErrorIs(t, err, ErrSpansFound)
	assert.Contains(t, out, "a.dart:1:7: ")

	require.NoError(t, os.WriteFile("a.dart", []byte("Text(Ikey.common.kHello.tr);\n"), 0o644))
	_, err = run(t, "check")
	assert.NoError(t, err)
}

func TestAdd(t *testing.T) {
	root := project(t, map[string]string{
		"lib/home.dart": "  Text(\"账单标题\"); Text('确定');\n",
	})

	out, err := run(t, "add", "lib/home.dart", "1", "9", "user_profile", "bills_title")
	require.NoError(t, err)
	assert.Equal(t, "Ikey.userProfile.kBillsTitle.tr = \"账单标题\"\n", out)

	assert.Equal(t, "  Text(Ikey.userProfile.kBillsTitle.tr); Text('确定');\n",
		readFile(t, filepath.Join(root, "lib", "home.dart")))

	table := keys.Load(filepath.Join(root, "translate", "translate.json"))
	text, ok := keys.NewResolver("", table).ResolveToken("Ikey.userProfile.kBillsTitle.tr")
	assert.True(t, ok)
	assert.Equal(t, "账单标题", text)

	constKeys := readFile(t, filepath.Join(root, "lib", "i18n", "const_key.dart"))
	assert.Contains(t, constKeys, `static const kBillsTitle = "user_profile_bills_title";`)
	assert.Contains(t, constKeys, "static final userProfile = UserProfile();")

	// Second span on the same line, now at a shifted column.
	_, err = run(t, "add", "lib/home.dart", "1", "48", "common", "ok")
	require.NoError(t, err)
	assert.Equal(t, "  Text(Ikey.userProfile.kBillsTitle.tr); Text(Ikey.common.kOk.tr);\n",
		readFile(t, filepath.Join(root, "lib", "home.dart")))

	hints, err := run(t, "hints", "lib/home.dart", "--folded")
	require.NoError(t, err)
	assert.Equal(t, "1:   Text(\"账单标题\"); Text(\"确定\");\n", hints)
}

func TestAdd_Errors(t *testing.T) {
	source := "Text('你好');\nfinal x = 1;\n"
	root := project(t, map[string]string{"a.dart": source})

	_, err := run(t, "add", "a.dart", "1", "7", "common", "BadKey")
	assert.ErrorIs(t, err, keys.ErrInvalidKey)

	_, err = run(t, "add", "a.dart", "1", "7", "Common", "hello")
	assert.ErrorIs(t, err, keys.ErrInvalidPrefix)

	_, err = run(t, "add", "a.dart", "2", "1", "common", "hello")
	assert.ErrorIs(t, err, parser.ErrNoSpan)

	_, err = run(t, "add", "a.dart", "9", "1", "common", "hello")
	assert.ErrorContains(t, err, "out of range")

	_, err = run(t, "add", "a.dart", "1", "40", "common", "hello")
	assert.ErrorContains(t, err, "column 40 out of range")

	_, err = run(t, "add", "a.dart", "0", "1", "common", "hello")
	assert.ErrorContains(t, err, "invalid line")

	assert.Equal(t, source, readFile(t, filepath.Join(root, "a.dart")))
	assert.NoFileExists(t, filepath.Join(root, "translate", "translate.json"))
}

func TestAdd_TableSaveFails(t *testing.T) {
	source := "Text('你好');\n"
	root := project(t, map[string]string{"lib/a.dart": source})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "translate", "translate.json"), 0o755))

	_, err := run(t, "add", "lib/a.dart", "1", "7", "common", "hello")
	require.Error(t, err)
	assert.Equal(t, source, readFile(t, filepath.Join(root, "lib", "a.dart")))
}

func TestAdd_LegacyModulePrefix(t *testing.T) {
	root := project(t, map[string]string{
		"translate/translate.json": `[{"prefix": "userProfile", "content": {"bills_title": "账单标题"}}]`,
		"lib/a.dart":               "Text('你好');\n",
	})

	out, err := run(t, "add", "lib/a.dart", "1", "7", "user_profile", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Ikey.userProfile.kHello.tr = \"你好\"\n", out)

	table := keys.Load(filepath.Join(root, "translate", "translate.json"))
	assert.Equal(t, []string{"userProfile"}, table.Prefixes())
	text, ok := keys.NewResolver("", table).ResolveToken("Ikey.userProfile.kHello.tr")
	assert.True(t, ok)
	assert.Equal(t, "你好", text)

	hints, err := run(t, "hints", "lib/a.dart", "--folded")
	require.NoError(t, err)
	assert.Equal(t, "1: Text(\"你好\");\n", hints)
}

func TestHints(t *testing.T) {
	project(t, map[string]string{
		"translate/translate.json": `[{"prefix": "common", "content": {"ok": "确定"}}]`,
		"a.dart":                   "Text(Ikey.common.kOk.tr);\nText(Ikey.common.kMissing.tr);\nfinal x = 1;\n",
	})

	out, err := run(t, "hints", "a.dart")
	require.NoError(t, err)
	assert.Equal(t, "1: Text(Ikey.common.kOk.tr /* 确定 */);\n", out)
}

func TestGenerate(t *testing.T) {
	root := project(t, map[string]string{
		"translate/translate.json": `[{"prefix": "common", "content": {"ok": "确定"}}]`,
		".cjk-extractor.yml":       "translate:\n  const_key_file: gen/keys.dart\n  aggregator_class: AppKeys\n",
	})

	_, err := run(t, "generate")
	require.NoError(t, err)

	content := readFile(t, filepath.Join(root, "gen", "keys.dart"))
	assert.Contains(t, content, "class Common {\n    static const kOk = \"common_ok\";\n}\n")
	assert.Contains(t, content, "class AppKeys {\n    static final common = Common();\n}\n")
}

func TestInvalidLogLevel(t *testing.T) {
	project(t, nil)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "generate"})
	assert.Error(t, cmd.Execute())
}
