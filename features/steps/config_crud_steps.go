//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-remuxer/cmd"
	"media-remuxer/infrastructure/config"

	"github.com/cucumber/godog"
)

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigCrudContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file exists with:$`, testCtx.aConfigFileExistsWith)
	ctx.Step(`^no config file exists$`, testCtx.noConfigFileExists)
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, testCtx.theEnvironmentVariableIs)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config reset "([^"]*)"$`, testCtx.iRunConfigReset)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theConfigOutputShouldContain)
	ctx.Step(`^the saved config should have "([^"]*)" set to "([^"]*)"$`, testCtx.theSavedConfigShouldHave)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, testCtx.theConfigCommandShouldFailWith)
}

func (c *configCrudContext) aConfigFileExistsWith(content *godog.DocString) error {
	return os.WriteFile(c.configPath, []byte(content.Content), 0644)
}

func (c *configCrudContext) noConfigFileExists() error {
	return nil
}

func (c *configCrudContext) theEnvironmentVariableIs(name, value string) error {
	// Unset again once the configuration is loaded
	return os.Setenv(name, value)
}

func (c *configCrudContext) load() error {
	cfg, err := config.Load(c.configPath)
	c.config = cfg
	return err
}

func (c *configCrudContext) iLoadTheConfiguration() error {
	defer unsetRemuxerEnv()
	c.err = c.load()
	return nil
}

func unsetRemuxerEnv() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}

func (c *configCrudContext) iRunConfigList() error {
	if err := c.load(); err != nil {
		return err
	}
	c.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigGet(key string) error {
	if err := c.load(); err != nil {
		return err
	}
	c.err = cmd.RunConfigGetWithDependencies(c.config, c.configPath, key, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigSet(key, value string) error {
	if err := c.load(); err != nil {
		return err
	}
	c.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, key, value, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigReset(key string) error {
	if err := c.load(); err != nil {
		return err
	}
	c.err = cmd.RunConfigResetWithDependencies(c.config, c.configPath, key, c.output)
	return nil
}

func (c *configCrudContext) theConfigOutputShouldContain(text string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %v", c.err)
	}
	if !strings.Contains(c.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, c.output.String())
	}
	return nil
}

func (c *configCrudContext) theSavedConfigShouldHave(key, expected string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %v", c.err)
	}
	cfg := c.config
	if _, err := os.Stat(c.configPath); err == nil {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
		cfg = loaded
	}

	got, err := config.NewConfigManager(cfg, c.configPath).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", key, expected, got)
	}
	return nil
}

func (c *configCrudContext) theConfigCommandShouldFailWith(msg string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, c.err)
	}
	return nil
}
