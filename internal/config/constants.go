package config

// Defaults for the CLI and the inspection service.
const (
	DefaultPrompt     = ">> "
	DefaultListenAddr = "127.0.0.1:7457"
	DefaultStorePath  = "tagval.db"
	DefaultProtoPath  = "proto/tagval.proto"
)

// ScriptFileExt is the recognized extension for literal script files.
const ScriptFileExt = ".tv"
