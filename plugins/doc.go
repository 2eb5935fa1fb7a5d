// Package plugins hosts platform pack subpackages. It intentionally contains
// no production runtime code itself; this file exists to anchor the
// architectural guard test that lives alongside it.
//
// A NOTE ON testhelper:
//
//	The subpackage plugins/testhelper is a deliberate escape hatch used only
//	in tests to construct QA fixtures from internal domain entities. It is
//	excluded from the architecture test that forbids importing
//	ipstudio/pkg/domain so that real platform packs (plugins/douyin,
//	plugins/xiaohongshu, plugins/wechat) stay decoupled from internal domain
//	shapes. Do not import testhelper in production plugin code.
package plugins
