package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"cjk-extractor/internal/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Render(t *testing.T) {
	modules := []keys.Module{
		{Prefix: "user_profile", Content: keys.NewContent(
			keys.Entry{Key: "bills_title", Text: "账单标题"},
			keys.Entry{Key: "account_address", Text: "账户地址"},
		)},
		{Prefix: "common", Content: keys.NewContent(keys.Entry{Key: "ok", Text: "确定"})},
	}

	want := `library i18n_const_key;

class UserProfile {
    static const kBillsTitle = "user_profile_bills_title";
    static const kAccountAddress = "user_profile_account_address";
}

class Common {
    static const kOk = "common_ok";
}

class I18nKey {
    static final userProfile = UserProfile();
    static final common = Common();
}
`
	assert.Equal(t, want, NewGenerator().Render(modules))
}

func TestGenerator_RenderEmpty(t *testing.T) {
	assert.Equal(t, "library i18n_const_key;\n\nclass I18nKey {\n}\n", NewGenerator().Render(nil))
}

func TestGenerator_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "i18n", "const_key.dart")
	g := &Generator{Library: "keys", Aggregator: "Keys"}

	require.NoError(t, g.Write(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "library keys;\n\nclass Keys {\n}\n", string(data))
}
