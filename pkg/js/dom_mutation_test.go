package js

import (
	"testing"
)

func TestCreateElement(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"></div>`)
	runScript(t, e, `
		var el = document.createElement("span");
		if (el.tagName !== "SPAN") throw new Error("tagName: " + el.tagName);
	`)
}

func TestCreateTextNode(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"></div>`)
	runScript(t, e, `
		var text = document.createTextNode("hello");
		if (text.nodeType !== 3) throw new Error("nodeType: " + text.nodeType);
		if (text.nodeValue !== "hello") throw new Error("nodeValue: " + text.nodeValue);
	`)
}

func TestAppendChild(t *testing.T) {
	e, p := newTestEngine(t, `<div id="root"></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		var child = document.createElement("p");
		root.appendChild(child);
		if (root.children.length !== 1) throw new Error("children.length: " + root.children.length);
		if (root.children[0].tagName !== "P") throw new Error("child tagName: " + root.children[0].tagName);
	`)

	root := p.QuerySelector("#root")
	if len(root.Children) != 1 || root.Children[0].TagName != "p" {
		t.Error("appendChild not reflected in the document tree")
	}
}

func TestAppendChildReparent(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="a"><span id="child">text</span></div><div id="b"></div>`)
	runScript(t, e, `
		var a = document.getElementById("a");
		var b = document.getElementById("b");
		b.appendChild(document.getElementById("child"));
		if (a.children.length !== 0) throw new Error("a should be empty, got: " + a.children.length);
		if (b.children.length !== 1) throw new Error("b should have 1 child, got: " + b.children.length);
	`)
}

func TestRemoveChild(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="parent"><span id="child">text</span></div>`)
	runScript(t, e, `
		var parent = document.getElementById("parent");
		var removed = parent.removeChild(document.getElementById("child"));
		if (parent.children.length !== 0) throw new Error("parent should be empty");
		if (removed.tagName !== "SPAN") throw new Error("removed should be SPAN");
	`)
}

func TestRemoveChildOfAnotherParentThrows(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="a"><span id="x"></span></div><div id="b"></div>`)
	err := e.Run(`
		document.getElementById("b").removeChild(document.getElementById("x"));
	`)
	if err == nil {
		t.Fatal("expected removeChild of a non-child to throw")
	}
}

func TestInsertBefore(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span id="ref"></span></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		var el = document.createElement("p");
		root.insertBefore(el, document.getElementById("ref"));
		if (root.children[0].tagName !== "P") throw new Error("expected P first, got: " + root.children[0].tagName);
	`)
}

func TestInsertBeforeNullRefAppends(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span></span></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		root.insertBefore(document.createElement("p"), null);
		if (root.children[1].tagName !== "P") throw new Error("expected P appended");
	`)
}

func TestInnerHTMLRead(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span class="x">hi</span></div>`)
	runScript(t, e, `
		var got = document.getElementById("root").innerHTML;
		if (got !== '<span class="x">hi</span>') throw new Error("innerHTML: " + got);
	`)
}

func TestInnerHTMLWrite(t *testing.T) {
	e, p := newTestEngine(t, `<div id="root"><span>old</span></div>`)
	runScript(t, e, `
		document.getElementById("root").innerHTML = "<p>a</p><p>b</p>";
	`)

	root := p.QuerySelector("#root")
	if len(root.Children) != 2 || root.Children[0].TagName != "p" {
		t.Errorf("expected two p children, got %d", len(root.Children))
	}
	if root.Children[0].Owner != p.Document() {
		t.Error("expected parsed children adopted into the document")
	}
}

func TestElementRemove(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span id="x"></span></div>`)
	runScript(t, e, `
		document.getElementById("x").remove();
		if (document.getElementById("x") !== null) throw new Error("x should be detached");
	`)
}

func TestAppendStringsBecomeText(t *testing.T) {
	e, p := newTestEngine(t, `<div id="root"></div>`)
	runScript(t, e, `
		document.getElementById("root").append("hello ", "world");
	`)
	if got := p.QuerySelector("#root").TextContent(); got != "hello world" {
		t.Errorf("textContent = %q, want %q", got, "hello world")
	}
}

func TestPrepend(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span></span></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		var p1 = document.createElement("p");
		var p2 = document.createElement("i");
		root.prepend(p1, p2);
		if (root.children[0].tagName !== "P") throw new Error("first: " + root.children[0].tagName);
		if (root.children[1].tagName !== "I") throw new Error("second: " + root.children[1].tagName);
		if (root.children[2].tagName !== "SPAN") throw new Error("third: " + root.children[2].tagName);
	`)
}

func TestBeforeAndAfter(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span id="mid"></span></div>`)
	runScript(t, e, `
		var mid = document.getElementById("mid");
		mid.before(document.createElement("a"));
		mid.after(document.createElement("b"));
		var root = document.getElementById("root");
		var tags = [];
		for (var i = 0; i < root.children.length; i++) tags.push(root.children[i].tagName);
		if (tags.join(",") !== "A,SPAN,B") throw new Error("order: " + tags.join(","));
	`)
}

func TestReplaceWith(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span id="old"></span></div>`)
	runScript(t, e, `
		document.getElementById("old").replaceWith(document.createElement("p"));
		var root = document.getElementById("root");
		if (root.children.length !== 1) throw new Error("children: " + root.children.length);
		if (root.children[0].tagName !== "P") throw new Error("tag: " + root.children[0].tagName);
	`)
}

func TestReplaceChildren(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span></span><span></span></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		root.replaceChildren(document.createElement("p"), "text");
		if (root.children.length !== 1) throw new Error("element children: " + root.children.length);
		if (root.childNodes.length !== 2) throw new Error("child nodes: " + root.childNodes.length);
	`)
}

func TestCloneNodeDeep(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="root"><span class="x">hi</span></div>`)
	runScript(t, e, `
		var root = document.getElementById("root");
		var clone = root.cloneNode(true);
		if (clone === root) throw new Error("clone should be a new node");
		if (clone.children.length !== 1) throw new Error("clone children: " + clone.children.length);
		if (clone.children[0].className !== "x") throw new Error("clone child class");
		clone.children[0].className = "y";
		if (root.children[0].className !== "x") throw new Error("clone should not share attributes");
	`)
}

func TestContainsAndHasChildNodes(t *testing.T) {
	e, _ := newTestEngine(t, `<div id="outer"><div id="inner"><span id="leaf"></span></div></div>`)
	runScript(t, e, `
		var outer = document.getElementById("outer");
		var leaf = document.getElementById("leaf");
		if (!outer.contains(leaf)) throw new Error("outer should contain leaf");
		if (leaf.contains(outer)) throw new Error("leaf should not contain outer");
		if (!outer.hasChildNodes()) throw new Error("outer has children");
		if (leaf.hasChildNodes()) throw new Error("leaf has none");
	`)
}
