package filewatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twinsights/modelgw/pkg/utils/filewatch"
)

func TestUntilModifyContext(t *testing.T) {
	t.Run("it should cancel when the file is rewritten", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(target, []byte("port: 8080\n"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, stop, err := filewatch.UntilModifyContext(context.Background(), target)
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		if err := os.WriteFile(target, []byte("port: 9090\n"), 0644); err != nil {
			t.Fatal(err)
		}

		select {
		case <-ctx.Done():
			// canceled as expected
		case <-time.After(3 * time.Second):
			t.Error("the context should be canceled when the file changes")
		}
	})

	t.Run("it should stay alive while the file is untouched", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(target, []byte("port: 8080\n"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, stop, err := filewatch.UntilModifyContext(context.Background(), target)
		if err != nil {
			t.Fatal(err)
		}
		defer stop()

		select {
		case <-ctx.Done():
			t.Errorf("the context should not be canceled: %v", context.Cause(ctx))
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("it should fail for a path that does not exist", func(t *testing.T) {
		_, _, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(t.TempDir(), "no-such-file"),
		)
		if err == nil {
			t.Error("an error should be returned")
		}
	})
}
