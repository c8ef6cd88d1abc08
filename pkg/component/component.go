package component

import (
	"os"
)

// Kind is the component category understood by the Langflow plugin loader.
// It doubles as the subdirectory name on both the source and destination
// sides: sources live in <component_dir>/<kind>/, deployed copies in
// <langflow_home>/components/<kind>/.
type Kind string

const (
	KindLLM        Kind = "llm"
	KindEmbeddings Kind = "embeddings"
)

// Kinds lists the component categories in deploy order.
var Kinds = []Kind{KindLLM, KindEmbeddings}

// Required names the component files that must be present in the source
// tree. Extra .py files next to them are deployed as well.
var Required = map[Kind][]string{
	KindLLM:        {"watsonx.py"},
	KindEmbeddings: {"watsonx_embeddings.py"},
}

// Component is a single plugin file to be placed into the Langflow
// user-level component directory.
type Component struct {
	Kind Kind
	// Name is the file name, e.g. "watsonx.py".
	Name string
	// SourcePath is the path to the local component source.
	SourcePath string
	// DestinationPath is where the component will be deployed to.
	DestinationPath string

	FileInfo os.FileInfo
}
