// Package pkgspec converts projects to and from package specifications,
// the typed record a packaging tool consumes.
//
// The conversion is a field broker from the project record to Spec. Most
// fields map one to one onto Spec struct fields; the rest go through small
// closures: the single license becomes a license list, the three file lists
// fold into Files, and the dependency mappings become Dependency entries
// with the development flag set accordingly.
//
// A project may describe several gems under a gems mapping. ForGem builds
// the spec of one of them: keys under gems.<name> take precedence over the
// project keys, file lists and dependencies are merged, and the depends,
// build_depends and devo_depends lists add dependencies, the first
// declaration of a name winning. The homepage_uri, source_code_uri and
// changelog_uri metadata each fall back to the one before.
package pkgspec
