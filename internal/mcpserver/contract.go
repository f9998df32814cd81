package mcpserver

// ArticleFormatContract describes the canonical Markdown article format
// that the corpus follows. LLM consumers should read it before authoring
// or reasoning about article files.
const ArticleFormatContract = `# Ehwaz Article Format Contract

Every Markdown article in the corpus follows this structure.

## Structure

An article is a single ` + "`.md`" + ` file: optional YAML frontmatter
delimited by ` + "`---`" + ` lines, followed by the Markdown body.

    ---
    title: Graph Theory
    importance: 4
    tags:
      - math
      - networks
    related_articles:
      - topology
      - combinatorics
    ---

    Body text with [[wikilinks]] goes here.

## Frontmatter fields

All fields are optional; an article with no frontmatter is valid.

- ` + "`title`" + ` (string): display title. Defaults to "Untitled" when
  absent or blank after trimming.
- ` + "`home_display`" + ` (bool): when true the article is featured on
  the home view. Defaults to false.
- ` + "`category`" + ` (string): free-form grouping label.
- ` + "`importance`" + ` (int): 1 through 5 inclusive. Defaults to 3.
  Values outside the range are rejected.
- ` + "`related_articles`" + ` (list of strings): slugs of related
  articles. Each entry must name an existing article slug, not a title.
- ` + "`tags`" + ` (list of strings): free-form tags.
- ` + "`created_at`" + `, ` + "`updated_at`" + ` (string): RFC 3339
  timestamps.
- ` + "`author_image`" + ` (string): path or URL to an author avatar.

## Slugs

An article's slug is derived from its file name: the ` + "`.md`" + `
extension is dropped, the name is lowercased, and runs of whitespace
become single hyphens. ` + "`Graph Theory.md`" + ` has slug
` + "`graph-theory`" + `.

## Links

Two internal link forms are recognized in the body:

- Wikilinks: ` + "`[[target]]`" + ` or ` + "`[[target|display text]]`" + `.
  The target is normalized like a file name to resolve the slug.
- Markdown links: ` + "`[display](target)`" + ` where the target has no
  URL scheme. Targets with a scheme (http://, https://, mailto:) are
  external and never validated against the corpus.

## Validation

A link whose resolved slug matches no article is reported as broken.
A ` + "`related_articles`" + ` entry that matches no slug is reported as
an invalid reference. Both carry suggestions for close slug matches.
`
