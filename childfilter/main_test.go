package childfilter

import (
	"os"
	"testing"

	"github.com/BackupTheBerlios/kryptocd/internal/sigignore"
)

func TestMain(m *testing.M) {
	sigignore.Ignore()
	os.Exit(m.Run())
}
