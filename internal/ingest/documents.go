package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/project-recall/recall/internal/extract"
	"github.com/project-recall/recall/internal/store"
)

// Document ID layout. Every document is keyed so re-ingestion of the same
// file overwrites its previous documents instead of accumulating.
//
//	{repo}:file:{path}            file_metadata
//	{repo}:contract:{path}:{name} data_contract
//	{repo}:entry:{kind}:{path}    entry_point
//	{repo}:dep:{path}             dependency

const (
	docTypeFileMetadata = "file_metadata"
	docTypeDataContract = "data_contract"
	docTypeEntryPoint   = "entry_point"
	docTypeDependency   = "dependency"
)

// fileMetadataDoc builds the primary search anchor document for a file.
// relatedTests, when non-empty, records the test files linked to this file.
func fileMetadataDoc(md *extract.FileMetadata, repoID, branch, timestamp string, relatedTests []string) store.Document {
	meta := map[string]string{
		"type":           docTypeFileMetadata,
		"file_path":      md.FilePath,
		"repository":     repoID,
		"branch":         branch,
		"language":       md.Language,
		"description":    md.Description,
		"exports":        strings.Join(capped(md.ExportList(), 20), ","),
		"is_entry_point": strconv.FormatBool(md.IsEntryPoint),
		"is_barrel":      strconv.FormatBool(md.IsBarrel),
		"is_test":        strconv.FormatBool(md.IsTest),
		"is_config":      strconv.FormatBool(md.IsConfig),
		"created_at":     timestamp,
		"updated_at":     timestamp,
	}
	if md.EntryPointKind != "" {
		meta["entry_point_type"] = md.EntryPointKind
	}
	if md.FileHash != "" {
		meta["file_hash"] = md.FileHash
	}
	if len(relatedTests) > 0 {
		meta["related_tests"] = strings.Join(capped(relatedTests, 10), ",")
	}

	return store.Document{
		ID:       fmt.Sprintf("%s:file:%s", repoID, md.FilePath),
		Content:  md.SearchContent(),
		Metadata: meta,
	}
}

// dataContractDoc builds one document per interface/type/schema.
func dataContractDoc(contract extract.DataContractInfo, filePath, repoID, branch, language, timestamp string) store.Document {
	parts := []string{contract.Name, filePath}
	if contract.SourceText != "" {
		parts = append(parts, contract.SourceText)
	}
	if len(contract.Fields) > 0 {
		descs := make([]string, 0, len(contract.Fields))
		for _, f := range contract.Fields {
			descs = append(descs, fmt.Sprintf("%s: %s", f.Name, f.TypeAnnotation))
			if len(descs) == 10 {
				break
			}
		}
		parts = append(parts, "Fields: "+strings.Join(descs, ", "))
	}

	meta := map[string]string{
		"type":          docTypeDataContract,
		"name":          contract.Name,
		"file_path":     filePath,
		"repository":    repoID,
		"branch":        branch,
		"language":      language,
		"contract_type": contract.Kind,
		"created_at":    timestamp,
		"updated_at":    timestamp,
	}
	if len(contract.Fields) > 0 {
		pairs := make([]string, 0, len(contract.Fields))
		for _, f := range contract.Fields {
			pairs = append(pairs, f.Name+":"+f.TypeAnnotation)
			if len(pairs) == 20 {
				break
			}
		}
		meta["fields"] = strings.Join(pairs, ",")
	}

	return store.Document{
		ID:       fmt.Sprintf("%s:contract:%s:%s", repoID, filePath, contract.Name),
		Content:  strings.Join(parts, "\n\n"),
		Metadata: meta,
	}
}

// triggerRecord is the JSON shape stored in entry_point metadata.
type triggerRecord struct {
	Type    string `json:"type"`
	Method  string `json:"method,omitempty"`
	Route   string `json:"route,omitempty"`
	Command string `json:"command,omitempty"`
}

// entryPointDoc builds the entry_point document for a file flagged as an
// entry point. Triggers are gathered from top-level functions and from
// class methods, since route handlers in class-based frameworks hang off
// methods rather than free functions.
func entryPointDoc(md *extract.FileMetadata, repoID, branch, timestamp string) store.Document {
	entryType := md.EntryPointKind
	if entryType == "" {
		entryType = extract.EntryMain
	}

	var triggers []triggerRecord
	addTriggers := func(fns []extract.FunctionSignature) {
		for _, fn := range fns {
			for _, t := range fn.Triggers {
				switch t.Kind {
				case extract.TriggerHTTP:
					triggers = append(triggers, triggerRecord{Type: t.Kind, Method: t.Method, Route: t.Route})
				case extract.TriggerCLI:
					triggers = append(triggers, triggerRecord{Type: t.Kind, Command: t.Command})
				}
			}
		}
	}
	addTriggers(md.Functions)
	for _, cls := range md.Classes {
		addTriggers(cls.Methods)
	}

	parts := []string{
		fmt.Sprintf("%s: %s", entryType, md.FilePath),
		md.Description,
	}

	var funcNames []string
	for _, fn := range md.Functions {
		if !strings.HasPrefix(fn.Name, "_") {
			funcNames = append(funcNames, fn.Name)
		}
	}
	if len(funcNames) > 0 {
		parts = append(parts, "Functions: "+strings.Join(capped(funcNames, 10), ", "))
	}

	if len(triggers) > 0 {
		var strs []string
		for _, t := range triggers {
			switch t.Type {
			case extract.TriggerHTTP:
				strs = append(strs, t.Method+" "+t.Route)
			case extract.TriggerCLI:
				cmd := t.Command
				if cmd == "" {
					cmd = "command"
				}
				strs = append(strs, "cli: "+cmd)
			}
			if len(strs) == 10 {
				break
			}
		}
		parts = append(parts, "Triggers: "+strings.Join(strs, ", "))
	}

	meta := map[string]string{
		"type":       docTypeEntryPoint,
		"file_path":  md.FilePath,
		"repository": repoID,
		"branch":     branch,
		"language":   md.Language,
		"entry_type": entryType,
		"created_at": timestamp,
		"updated_at": timestamp,
	}
	if len(triggers) > 0 {
		if len(triggers) > 20 {
			triggers = triggers[:20]
		}
		if data, err := json.Marshal(triggers); err == nil {
			meta["triggers"] = string(data)
		}
	}
	if md.FileHash != "" {
		meta["file_hash"] = md.FileHash
	}

	return store.Document{
		ID:       fmt.Sprintf("%s:entry:%s:%s", repoID, entryType, md.FilePath),
		Content:  strings.Join(parts, "\n\n"),
		Metadata: meta,
	}
}

// dependencyDoc builds the dependency document for a file with at least one
// resolved import edge in either direction.
func dependencyDoc(filePath string, imports, importedBy []string, repoID, branch, timestamp string) store.Document {
	parts := []string{filePath}
	if len(imports) > 0 {
		parts = append(parts, "Imports: "+strings.Join(imports, ", "))
	}
	if len(importedBy) > 0 {
		parts = append(parts, "Imported by: "+strings.Join(importedBy, ", "))
	}

	meta := map[string]string{
		"type":              docTypeDependency,
		"file_path":         filePath,
		"repository":        repoID,
		"branch":            branch,
		"imports":           strings.Join(capped(imports, 20), ","),
		"imported_by":       strings.Join(capped(importedBy, 20), ","),
		"import_count":      strconv.Itoa(len(imports)),
		"imported_by_count": strconv.Itoa(len(importedBy)),
		"impact_tier":       impactTier(len(importedBy)),
		"created_at":        timestamp,
		"updated_at":        timestamp,
	}

	return store.Document{
		ID:       fmt.Sprintf("%s:dep:%s", repoID, filePath),
		Content:  strings.Join(parts, "\n\n"),
		Metadata: meta,
	}
}

// impactTier buckets a file by how many files depend on it.
func impactTier(importedByCount int) string {
	switch {
	case importedByCount > 5:
		return "High"
	case importedByCount >= 2:
		return "Medium"
	default:
		return "Low"
	}
}

func capped(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
