package mcpserver

// NavigationContract documents the query-string grammar shared by the HTTP
// API, the /go redirect and the search_links tool.
const NavigationContract = `# golinks Navigation State

Search pages are addressed by a query string. Every field is optional and a
field equal to its default is left out, so the default page is the bare path.

| field  | default   | values |
|--------|-----------|--------|
| page   | 1         | integer >= 1 |
| limit  | 10        | integer >= 1 |
| query  | (empty)   | any text; empty lists every link, most recently modified first |
| method | semantic  | semantic, damerau_levenshtein, levenshtein, jaro_winkler, soundex, metaphone |
| sort   | relevance | relevance, alphabetical, created, updated |
| order  | desc      | desc, asc (ignored when sort is relevance) |

## Rules

1. Decoding an encoded state yields the same state.
2. ` + "`" + `metaphone` + "`" + ` is recognized but not implemented; requests using it fail
   instead of falling back to another method.
3. ` + "`" + `semantic` + "`" + ` only ranks the nearest candidates (default 100) by vector
   distance; paging happens inside that pool.
4. Relevance keeps the method's own ranking; ties are broken by most recent
   modification.

## Examples

- ` + "`" + `/api/links` + "`" + ` lists page 1 of all links.
- ` + "`" + `/api/links?method=damerau_levenshtein&page=2&query=widget` + "`" + ` is page 2 of
  the edit-distance ranking for "widget".
- ` + "`" + `/go/docs` + "`" + ` follows the alias chain of "docs" and redirects to its
  target, or to ` + "`" + `/?query=docs` + "`" + ` when "docs" is not registered.
`
