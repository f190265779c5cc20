// Package overrides pins exact game titles to Steam app ids ahead of any
// cache or network lookup. A small table is compiled in; users extend it with
// a JSON file:
//
//	{
//	  "ARC Raiders Playtest": "2427520",
//	  "Some Internal Build": "123456"
//	}
package overrides
