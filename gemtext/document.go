// Package gemtext provides a builder for the text/gemini line-oriented
// document format returned by most successful Gemini responses.
package gemtext

// Builder allows programmatic construction of a text/gemini document
// using the builder pattern.
//
// Example:
//
//	b := gemtext.NewBuilder()
//	b.AddH1Header("Hello world!")
//	b.AddLine("Reasons to use this builder:")
//	b.AddBullet("It's easy to use.")
//	b.AddBullet("It's easy to grok the code!")
//	b.AddLink("/about", "click here for more!")
//
//	resp.SetBodyBytes(b.Build())
type Builder struct {
	body string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddLine adds a line to the document, appending a newline if the
// line doesn't already end with one.
func (b *Builder) AddLine(line string) {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	b.body += line
}

// AddH1Header adds an H1 (#) header line.
func (b *Builder) AddH1Header(header string) {
	b.AddLine("# " + header)
}

// AddH2Header adds an H2 (##) header line.
func (b *Builder) AddH2Header(header string) {
	b.AddLine("## " + header)
}

// AddH3Header adds an H3 (###) header line.
func (b *Builder) AddH3Header(header string) {
	b.AddLine("### " + header)
}

// AddQuote adds a quote line.
func (b *Builder) AddQuote(line string) {
	b.AddLine("> " + line)
}

// AddBullet adds an unordered list item.
func (b *Builder) AddBullet(line string) {
	b.AddLine("* " + line)
}

// TogglePreformatting adds a preformatting toggle line ("```").
func (b *Builder) TogglePreformatting() {
	b.AddLine("```")
}

// AddLink adds an aliased link line.
func (b *Builder) AddLink(url, title string) {
	b.AddLine("=> " + url + "\t" + title)
}

// AddRawLink adds a link line with no alias.
func (b *Builder) AddRawLink(url string) {
	b.AddLine("=> " + url)
}

// Build serializes the document into its wire form.
func (b *Builder) Build() []byte {
	return []byte(b.body)
}
