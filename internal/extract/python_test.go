package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/project-recall/recall/internal/parser"
)

// Test Plan for the Python extractor:
// - Extract plain, aliased, and from-imports (relative and absolute)
// - Honor __all__ as the export allow-list
// - Fall back to public top-level names when __all__ is absent
// - Extract classes with bases, methods, and docstrings
// - Mark dataclasses and pydantic models
// - Extract top-level functions only (methods stay on their class)
// - Extract parameters with types and defaults, skipping self/cls
// - Detect FastAPI/Flask route triggers and click CLI triggers
// - Detect entry points in priority order (__main__ guard first)
// - Detect barrel __init__.py files
// - Produce data contracts for dataclass, pydantic, and TypedDict
// - Survive malformed source without panicking

func parseSource(t *testing.T, language, source string) *sitter.Tree {
	t.Helper()
	tree := parser.New().Parse([]byte(source), language)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree
}

func TestPythonExtractor_Imports(t *testing.T) {
	t.Parallel()

	source := `import os
import numpy as np
from pathlib import Path
from .models import User, Order
from ..common import helper
from src.utils import format_date
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	imports := e.Imports(tree.RootNode(), []byte(source))
	require.Len(t, imports, 6)

	byModule := make(map[string]ImportInfo)
	for _, imp := range imports {
		byModule[imp.Module] = imp
	}

	assert.True(t, byModule["os"].IsExternal)

	np := byModule["numpy"]
	assert.Equal(t, "np", np.Alias)
	assert.True(t, np.IsExternal)

	pathlib := byModule["pathlib"]
	assert.Equal(t, []string{"Path"}, pathlib.Names)

	models := byModule[".models"]
	assert.False(t, models.IsExternal)
	assert.Equal(t, []string{"User", "Order"}, models.Names)

	common := byModule["..common"]
	assert.False(t, common.IsExternal)

	// src.-prefixed absolute imports count as project-internal
	assert.False(t, byModule["src.utils"].IsExternal)
}

func TestPythonExtractor_ExportsDunderAll(t *testing.T) {
	t.Parallel()

	source := `__all__ = ["foo", "Bar"]

def foo():
    pass

def hidden_anyway():
    pass

class Bar:
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	// __all__ wins even over other public names
	assert.Equal(t, []string{"foo", "Bar"}, e.Exports(tree.RootNode(), []byte(source)))
}

func TestPythonExtractor_ExportsPublicNames(t *testing.T) {
	t.Parallel()

	source := `def public_fn():
    pass

def _private_fn():
    pass

class PublicClass:
    pass

class _PrivateClass:
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	assert.Equal(t, []string{"public_fn", "PublicClass"}, e.Exports(tree.RootNode(), []byte(source)))
}

func TestPythonExtractor_Classes(t *testing.T) {
	t.Parallel()

	source := `class UserService(BaseService):
    """Manages user accounts."""

    def get_user(self, user_id: int) -> User:
        return self.db.get(user_id)

    def _internal(self):
        pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	classes := e.Classes(tree.RootNode(), []byte(source))
	require.Len(t, classes, 1)

	svc := classes[0]
	assert.Equal(t, "UserService", svc.Name)
	assert.Equal(t, []string{"BaseService"}, svc.Bases)
	assert.Equal(t, "Manages user accounts.", svc.Docstring)

	require.Len(t, svc.Methods, 2)
	getUser := svc.Methods[0]
	assert.Equal(t, "get_user", getUser.Name)
	assert.True(t, getUser.IsMethod)
	assert.Equal(t, "User", getUser.ReturnType)

	// self is skipped
	require.Len(t, getUser.Parameters, 1)
	assert.Equal(t, "user_id", getUser.Parameters[0].Name)
	assert.Equal(t, "int", getUser.Parameters[0].TypeAnnotation)
}

func TestPythonExtractor_Dataclass(t *testing.T) {
	t.Parallel()

	source := `from dataclasses import dataclass
from typing import Optional

@dataclass
class User:
    name: str
    email: str
    age: Optional[int] = None
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	classes := e.Classes(tree.RootNode(), []byte(source))
	require.Len(t, classes, 1)
	assert.True(t, classes[0].IsDataRecord)
	assert.False(t, classes[0].IsValidatedModel)

	contracts := e.DataContracts(tree.RootNode(), []byte(source))
	require.Len(t, contracts, 1)

	user := contracts[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, ContractDataclass, user.Kind)
	require.Len(t, user.Fields, 3)

	assert.Equal(t, "name", user.Fields[0].Name)
	assert.Equal(t, "str", user.Fields[0].TypeAnnotation)
	assert.False(t, user.Fields[0].Optional)

	age := user.Fields[2]
	assert.Equal(t, "age", age.Name)
	assert.Equal(t, "Optional[int]", age.TypeAnnotation)
	assert.True(t, age.Optional)
	assert.Equal(t, "None", age.DefaultValue)
}

func TestPythonExtractor_PydanticAndTypedDict(t *testing.T) {
	t.Parallel()

	source := `from pydantic import BaseModel
from typing import TypedDict

class Account(BaseModel):
    owner: str
    balance: float

class Movie(TypedDict):
    title: str
    year: int
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	classes := e.Classes(tree.RootNode(), []byte(source))
	require.Len(t, classes, 2)
	assert.True(t, classes[0].IsValidatedModel)

	contracts := e.DataContracts(tree.RootNode(), []byte(source))
	require.Len(t, contracts, 2)
	assert.Equal(t, ContractModel, contracts[0].Kind)
	assert.Equal(t, ContractTypedDict, contracts[1].Kind)
}

func TestPythonExtractor_FunctionsTopLevelOnly(t *testing.T) {
	t.Parallel()

	source := `def top_level():
    pass

async def fetch_data(url: str, timeout: int = 30):
    pass

class Svc:
    def method(self):
        pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	functions := e.Functions(tree.RootNode(), []byte(source))
	require.Len(t, functions, 2)

	assert.Equal(t, "top_level", functions[0].Name)

	fetch := functions[1]
	assert.Equal(t, "fetch_data", fetch.Name)
	assert.True(t, fetch.IsAsync)
	require.Len(t, fetch.Parameters, 2)
	assert.Equal(t, "url", fetch.Parameters[0].Name)
	timeout := fetch.Parameters[1]
	assert.True(t, timeout.IsOptional)
	assert.Equal(t, "30", timeout.DefaultValue)
}

func TestPythonExtractor_FastAPITriggers(t *testing.T) {
	t.Parallel()

	source := `from fastapi import FastAPI

app = FastAPI()

@app.get("/users")
def list_users():
    pass

@app.post("/users")
def create_user():
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	functions := e.Functions(tree.RootNode(), []byte(source))
	require.Len(t, functions, 2)

	require.Len(t, functions[0].Triggers, 1)
	assert.Equal(t, TriggerInfo{Kind: TriggerHTTP, Method: "GET", Route: "/users"}, functions[0].Triggers[0])

	require.Len(t, functions[1].Triggers, 1)
	assert.Equal(t, "POST", functions[1].Triggers[0].Method)
}

func TestPythonExtractor_FlaskRouteMethods(t *testing.T) {
	t.Parallel()

	source := `from flask import Flask

app = Flask(__name__)

@app.route("/items", methods=["GET", "POST"])
def items():
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	functions := e.Functions(tree.RootNode(), []byte(source))
	require.Len(t, functions, 1)
	require.Len(t, functions[0].Triggers, 2)
	assert.Equal(t, "GET", functions[0].Triggers[0].Method)
	assert.Equal(t, "POST", functions[0].Triggers[1].Method)
	assert.Equal(t, "/items", functions[0].Triggers[0].Route)
}

func TestPythonExtractor_ClickCommand(t *testing.T) {
	t.Parallel()

	source := `import click

@click.command()
def sync():
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	functions := e.Functions(tree.RootNode(), []byte(source))
	require.Len(t, functions, 1)
	require.Len(t, functions[0].Triggers, 1)
	assert.Equal(t, TriggerCLI, functions[0].Triggers[0].Kind)
}

func TestPythonExtractor_EntryPointPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		source   string
		filePath string
		want     string
	}{
		{
			name:     "main guard wins over filename",
			source:   "import click\n\nif __name__ == \"__main__\":\n    run()\n",
			filePath: "tool.py",
			want:     EntryMain,
		},
		{
			name:     "cli framework import",
			source:   "import click\n\n@click.command()\ndef go():\n    pass\n",
			filePath: "tool.py",
			want:     EntryCLI,
		},
		{
			name:     "fastapi app",
			source:   "from fastapi import FastAPI\n\napp = FastAPI()\n",
			filePath: "server.py",
			want:     EntryAPIRoute,
		},
		{
			name:     "conventional filename",
			source:   "x = 1\n",
			filePath: "main.py",
			want:     EntryMain,
		},
		{
			name:     "plain module",
			source:   "def helper():\n    pass\n",
			filePath: "util.py",
			want:     "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tree := parseSource(t, "python", tc.source)
			e := NewPythonExtractor()
			assert.Equal(t, tc.want, e.DetectEntryPoint(tree.RootNode(), []byte(tc.source), tc.filePath))
		})
	}
}

func TestPythonExtractor_DetectBarrel(t *testing.T) {
	t.Parallel()

	barrel := `"""Package exports."""
from .models import User
from .services import UserService

__all__ = ["User", "UserService"]
`
	tree := parseSource(t, "python", barrel)
	e := NewPythonExtractor()
	assert.True(t, e.DetectBarrel(tree.RootNode(), []byte(barrel), "pkg/__init__.py"))

	// same content under a different filename is not a barrel
	assert.False(t, e.DetectBarrel(tree.RootNode(), []byte(barrel), "pkg/exports.py"))

	withCode := `from .models import User

def helper():
    pass
`
	tree2 := parseSource(t, "python", withCode)
	assert.False(t, e.DetectBarrel(tree2.RootNode(), []byte(withCode), "pkg/__init__.py"))
}

func TestPythonExtractor_MalformedSource(t *testing.T) {
	t.Parallel()

	source := "def broken(:\n    pass\n\nclass Ok:\n    def fine(self):\n        pass\n"
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	// Extraction must not panic and still picks up the well-formed class.
	md := ExtractAll(e, tree.RootNode(), []byte(source), "broken.py")
	require.NotNil(t, md)

	found := false
	for _, cls := range md.Classes {
		if cls.Name == "Ok" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPythonExtractor_Idempotent(t *testing.T) {
	t.Parallel()

	source := `from .models import User

@app.get("/users")
def list_users():
    pass
`
	tree := parseSource(t, "python", source)
	e := NewPythonExtractor()

	first := ExtractAll(e, tree.RootNode(), []byte(source), "api.py")
	second := ExtractAll(e, tree.RootNode(), []byte(source), "api.py")
	assert.Equal(t, first, second)
}
