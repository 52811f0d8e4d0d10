// Package repo loads template sources by name and caches their compiled
// form.
//
// A [Loader] fetches source text from some backing store: memory
// ([MapLoader]), a search path of directories ([DirLoader]), or an SQLite
// table ([SQLLoader]). A [Repository] wraps a Loader, compiles what it
// loads, and implements [mustache.Repository] so templates can resolve
// partials and parents through it.
//
//	r := repo.New(repo.NewDirLoader("", repo.SearchPath([]string{"views"}, "MUSTACHE_PATH")...))
//
//	page, err := r.Template(ctx, "page")
//	if err != nil {
//		return err
//	}
//
//	out, _, err := page.Render(ctx, data)
//
// Each name is loaded and compiled at most once until [Repository.Clear]
// is called, and names whose sources are identical share one tag tree.
package repo
