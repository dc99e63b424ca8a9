package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	assert.Equal(t, 4, len(commands))
	names := map[string]bool{}
	for _, cmd := range commands {
		assert.NotEmpty(t, cmd.Help())
		names[cmd.Name()] = true
	}
	assert.Equal(t, 4, len(names))
}

func TestParseArgs(t *testing.T) {
	name, args := parseArgs([]string{"wavescope", "render", "-tone", "-frames", "10"})
	assert.Equal(t, "render", name)
	assert.Equal(t, []string{"-tone", "-frames", "10"}, args)

	name, args = parseArgs([]string{"wavescope"})
	assert.Equal(t, "", name)
	assert.Nil(t, args)
}

func TestFlags(t *testing.T) {
	cmd := &renderCommand{}
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.Register(fs)
	assert.NoError(t, fs.Parse([]string{"-tone", "-frequency", "880", "-frames", "10", "-output", "none"}))
	assert.True(t, cmd.tone)
	assert.False(t, cmd.capture)
	assert.Equal(t, 880.0, cmd.frequency)
	assert.Equal(t, 10, cmd.frames)
	assert.Equal(t, "none", cmd.output)
}

func TestNewDriver(t *testing.T) {
	for _, name := range []string{"portaudio", "oto", "none", "manual"} {
		d, err := newDriver(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, d, name)
	}
	_, err := newDriver("jack")
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	c := config{args: []string{"wavescope", "play"}}
	assert.Equal(t, errorExitCode, c.run())
}
