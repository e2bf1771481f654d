// Package datmatch identifies dumped ROM files by content and renames them
// to the canonical names listed in DAT catalogs.
//
// Catalogs are loaded into an in-memory Index keyed by MD5 digest. An Engine
// scans one directory at a time, hashes every regular file (and the members
// of zip archives), and decides per file whether it is unmatched, already
// correctly named, renameable or ambiguous. Without WithRename the engine
// only reports what it would do.
//
// Basic usage:
//
//	idx, sum, _ := datmatch.LoadCatalogDir(afero.NewOsFs(), "~/dats", "", nil)
//	fmt.Println(sum.Documents, "catalogs,", idx.Len(), "digests")
//
//	// Dry run
//	e := datmatch.New(idx)
//	results, _ := e.ProcessDir(ctx, "roms/nes")
//	for _, r := range results {
//	    fmt.Println(r.Name, r.Outcome, r.Target)
//	}
//
//	// Rename in place, extracting matched zip members
//	e = datmatch.New(idx, datmatch.WithRename(true), datmatch.WithExtract(true))
//	e.ProcessDir(ctx, "roms/nes")
//
//	datmatch.WriteSummary(os.Stdout, e.Stats(), datmatch.FormatText)
package datmatch
